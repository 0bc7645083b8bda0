// Package store defines the store contract consumed by the binding engine and
// ships a small in-memory reference store.
//
// The engine treats the store as opaque: it reads State, forwards Dispatch to
// derived props, and registers exactly one change listener per Provider.
//
//	st := store.New(func(state, action any) any {
//	    if a, ok := action.(store.Action); ok && a.Type == "APPEND" {
//	        return state.(string) + a.Payload.(string)
//	    }
//	    return state
//	}, "")
//
//	_, err := st.Dispatch(store.Action{Type: "APPEND", Payload: "a"})
//
// Memory is driven from a single goroutine. Listeners may subscribe and
// unsubscribe while they are being notified.
package store
