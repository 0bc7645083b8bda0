// Package bind connects a store to a tree of presentation nodes.
//
// A Provider owns the root of the notification tree and the only listener
// registered with the store. A Binding is a reusable connect definition; each
// Binding.Connect call creates a Connector for one mounted node, parented to
// the nearest connected ancestor the host passes in:
//
//	p, err := bind.NewProvider(st)
//	if err != nil {
//	    return err
//	}
//
//	list := bind.New(
//	    bind.WithName("TodoList"),
//	    bind.WithMapState(selector.FromState(func(state any) (selector.Props, error) {
//	        return selector.Props{"todos": state.(AppState).Todos}, nil
//	    })),
//	)
//
//	c, err := list.Connect(p, selector.Props{"filter": "all"}, bind.OnUpdate(render))
//	if err != nil {
//	    return err
//	}
//	c.Mount()
//	defer c.Unmount()
//
// Every commit runs one flush: each Connector recomputes its props and only
// then notifies the connectors below it, so no node ever derives props from
// state newer than what its ancestors have applied. Props that did not change
// keep their map identity (selector.SameProps).
//
// Derivation failures are sticky per Connector and are returned from the
// Dispatch call that triggered them.
package bind
