package subscription

// Source is the store side of the tree: anything accepting a change listener.
type Source interface {
	Subscribe(fn func() error) (unsubscribe func())
}

type state uint8

const (
	stateIdle state = iota
	stateBound
	stateClosed
)

// String returns a human-readable name for the state.
func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateBound:
		return "bound"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscription is a node of the notification tree.
//
// A Subscription moves from idle to bound once and from bound (or idle) to
// closed once; a closed Subscription is never reused.
type Subscription struct {
	// source is used only when parent is nil.
	source Source

	// parent is the nearest connected ancestor, nil for the root.
	parent *Subscription

	// onChange is the owner's reaction to a notification.
	onChange func() error

	children    Registry
	unsubscribe func()
	state       state
}

// New creates an idle Subscription. With a nil parent it will register
// directly with source when bound.
func New(source Source, parent *Subscription, onChange func() error) *Subscription {
	return &Subscription{
		source:   source,
		parent:   parent,
		onChange: onChange,
	}
}

// Bind registers the node with its parent, or with the source for a root
// node. Binding a bound or closed node does nothing.
func (s *Subscription) Bind() error {
	if s.state != stateIdle {
		return nil
	}
	if s.onChange == nil {
		return NewConfigurationError("B002")
	}

	if s.parent != nil {
		unsubscribe, err := s.parent.AddNested(s.handleChange)
		if err != nil {
			return err
		}
		s.unsubscribe = unsubscribe
	} else {
		if s.source == nil {
			return NewConfigurationError("B001")
		}
		s.unsubscribe = s.source.Subscribe(s.handleChange)
	}

	s.state = stateBound
	return nil
}

// Unbind removes the registration and closes the node. It is safe to call
// on a node that was never bound or is already closed.
func (s *Subscription) Unbind() {
	if s.state == stateClosed {
		return
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.children.Clear()
	s.state = stateClosed
}

// AddNested registers a child listener, binding this node first if needed.
// On a closed node it returns a no-op unsubscribe.
func (s *Subscription) AddNested(fn func() error) (func(), error) {
	if s.state == stateClosed {
		if fn == nil {
			return nil, NewConfigurationError("B002")
		}
		return func() {}, nil
	}
	if err := s.Bind(); err != nil {
		return nil, err
	}
	return s.children.Subscribe(fn)
}

// NotifyNested notifies the children registered when the call starts.
func (s *Subscription) NotifyNested() error {
	if s.state == stateClosed {
		return nil
	}
	return s.children.NotifyAll()
}

// IsBound reports whether the node is currently registered.
func (s *Subscription) IsBound() bool {
	return s.state == stateBound
}

// Active reports whether the node is bound and none of its ancestors has
// been unbound. Closing a node deactivates its whole subtree, even the
// children that were never unbound themselves.
func (s *Subscription) Active() bool {
	if s.state != stateBound {
		return false
	}
	for p := s.parent; p != nil; p = p.parent {
		if p.state == stateClosed {
			return false
		}
	}
	return true
}

// IsClosed reports whether the node was unbound.
func (s *Subscription) IsClosed() bool {
	return s.state == stateClosed
}

// Parent returns the parent node, nil for a root.
func (s *Subscription) Parent() *Subscription {
	return s.parent
}

// NestedCount returns the number of children registered for the next pass.
func (s *Subscription) NestedCount() int {
	return s.children.Len()
}

// State returns the lifecycle state name ("idle", "bound" or "closed").
func (s *Subscription) State() string {
	return s.state.String()
}

// handleChange is the listener registered with the parent. A node unbound
// while a pass is in flight, or whose ancestor was, is still called from the
// snapshot and ignores it.
func (s *Subscription) handleChange() error {
	if !s.Active() {
		return nil
	}
	return s.onChange()
}
