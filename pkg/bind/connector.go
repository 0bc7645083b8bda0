package bind

import (
	"sync/atomic"

	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/store"
	"github.com/vango-dev/storebind/pkg/subscription"
)

var nextNodeID atomic.Uint64

// ConnectOption configures one Connector.
type ConnectOption func(*Connector)

// OnUpdate registers a callback for every recompute of this node, the
// initial one included.
func OnUpdate(fn func(Update)) ConnectOption {
	return func(c *Connector) {
		c.onUpdate = fn
	}
}

// Connector is one mounted node of a Binding. It must be used from the
// goroutine that owns the tree.
type Connector struct {
	id      uint64
	binding *Binding
	env     *env

	// sub is nil for nodes without a state stage; parentSub is then what
	// their children attach to.
	sub       *subscription.Subscription
	parentSub *subscription.Subscription

	sel      *selector.Selector
	onUpdate func(Update)

	state   any
	own     selector.Props
	derived selector.Props
	props   selector.Props
	renders int
	err     error

	mounted   bool
	unmounted bool
}

// Connect creates a node under parent and computes its first props. The node
// receives no notifications until Mount.
func (b *Binding) Connect(parent Parent, own selector.Props, opts ...ConnectOption) (*Connector, error) {
	if parent == nil {
		return nil, storeNotFound(b.name)
	}
	e := parent.environment()
	if e == nil || e.store == nil {
		return nil, storeNotFound(b.name)
	}

	sel, err := selector.New(b.config(e.dispatch), e.dispatch)
	if err != nil {
		return nil, asConfigurationError(err, b.name)
	}

	c := &Connector{
		id:        nextNodeID.Add(1),
		binding:   b,
		env:       e,
		parentSub: parent.Subscription(),
		sel:       sel,
		own:       own,
	}
	for _, opt := range opts {
		opt(c)
	}
	if sel.HandlesState() {
		c.sub = subscription.New(e.store, c.parentSub, c.handleChange)
	}

	c.state = e.store.State()
	// A failed first derivation is kept and reported through Props.
	_ = c.recompute(CauseInitial)
	return c, nil
}

// ID returns the node id, unique in the process.
func (c *Connector) ID() uint64 {
	return c.id
}

// Name returns the binding name.
func (c *Connector) Name() string {
	return c.binding.name
}

// Store returns the store the node reads from.
func (c *Connector) Store() store.Store {
	return c.env.store
}

// Subscription returns the subscription children attach to: the node's own,
// or its parent's for a node without a state stage.
func (c *Connector) Subscription() *subscription.Subscription {
	if c.sub != nil {
		return c.sub
	}
	return c.parentSub
}

func (c *Connector) environment() *env {
	if c == nil {
		return nil
	}
	return c.env
}

// Mount binds the node and catches up with commits made since Connect.
// Mounting twice, or after Unmount, does nothing.
func (c *Connector) Mount() error {
	if c.mounted || c.unmounted {
		return nil
	}
	if c.sub != nil {
		if err := c.sub.Bind(); err != nil {
			return err
		}
	}
	c.mounted = true
	c.env.observer.ObserveMount(c.id, c.binding.name, true)

	if c.sub == nil {
		return nil
	}
	if next := c.env.store.State(); !selector.Identical(next, c.state) {
		c.state = next
		return c.recompute(CauseMount)
	}
	return nil
}

// Unmount unbinds the node and its subtree. It is idempotent. Called during
// a notify pass, it keeps the subtree from being notified for the rest of
// that pass.
func (c *Connector) Unmount() {
	if c.unmounted {
		return
	}
	c.unmounted = true
	if c.sub != nil {
		c.sub.Unbind()
	}
	if c.mounted {
		c.env.observer.ObserveMount(c.id, c.binding.name, false)
	}
}

// Mounted reports whether the node is mounted and neither it nor an
// ancestor has been unmounted.
func (c *Connector) Mounted() bool {
	if !c.mounted || c.unmounted {
		return false
	}
	if sub := c.Subscription(); sub != nil {
		return sub.Active()
	}
	return true
}

// SetOwnProps re-derives with new own props against the current state. It
// does nothing after Unmount, or when a pure node gets shallow-equal props.
func (c *Connector) SetOwnProps(own selector.Props) error {
	if c.unmounted {
		return nil
	}
	if !c.binding.impure && c.err == nil && selector.ShallowEqual(own, c.own) {
		return nil
	}
	c.own = own
	c.state = c.env.store.State()
	return c.recompute(CauseOwnProps)
}

// Props returns the current props, or the sticky derivation error.
func (c *Connector) Props() (selector.Props, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.props, nil
}

// handleChange runs once per commit, from the parent's notify pass. The
// node's own children are notified only after it has recomputed.
func (c *Connector) handleChange() error {
	if c.unmounted {
		return nil
	}
	next := c.env.store.State()
	if !c.binding.impure && c.err == nil && selector.Identical(next, c.state) {
		return c.sub.NotifyNested()
	}
	c.state = next
	if err := c.recompute(CauseStore); err != nil {
		return err
	}
	return c.sub.NotifyNested()
}

func (c *Connector) recompute(cause Cause) error {
	derived, err := c.sel.Select(c.state, c.own)
	if err != nil {
		if c.err == nil {
			c.env.logger.Warn("derivation failed", "node", c.binding.name, "id", c.id, "error", err)
		}
		c.err = err
		c.emit(Update{Cause: cause, Err: err})
		return err
	}
	c.err = nil

	changed := c.props == nil || !selector.SameProps(derived, c.derived)
	c.derived = derived
	if changed {
		c.renders++
		c.props = c.decorate(derived)
	}
	c.emit(Update{Cause: cause, Props: c.props, Changed: changed})
	return nil
}

func (c *Connector) decorate(derived selector.Props) selector.Props {
	if c.binding.renderCount == "" {
		return derived
	}
	out := make(selector.Props, len(derived)+1)
	for k, v := range derived {
		out[k] = v
	}
	out[c.binding.renderCount] = c.renders
	return out
}

func (c *Connector) emit(u Update) {
	u.NodeID = c.id
	u.Node = c.binding.name
	c.env.observer.ObserveUpdate(c.env.context(), u)
	if c.binding.onUpdate != nil {
		c.binding.onUpdate(u)
	}
	if c.onUpdate != nil {
		c.onUpdate(u)
	}
}
