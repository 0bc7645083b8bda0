package store

import (
	"errors"
	"log/slog"

	binderrors "github.com/vango-dev/storebind/internal/errors"
	"github.com/vango-dev/storebind/pkg/subscription"
)

// Store is the state container the engine binds to.
type Store interface {
	// State returns the last committed state.
	State() any

	// Dispatch commits action and runs the change listeners. Listener errors
	// are returned joined.
	//
	// A Dispatch made while a bound tree is being notified commits at once,
	// but the tree sees it in an extra pass run by the outer Dispatch. Errors
	// raised by that pass are returned from the outer Dispatch; the nested
	// one returns nil.
	Dispatch(action any) (any, error)

	// Subscribe registers a change listener. The returned function removes
	// it and is idempotent.
	Subscribe(fn func() error) (unsubscribe func())
}

// Reducer computes the next state.
type Reducer func(state, action any) any

// Action is a conventional action shape.
type Action struct {
	Type    string
	Payload any
}

// InitAction is dispatched through the reducer when a Memory store is created
// or its reducer replaced. Listeners are not notified for it.
type InitAction struct{}

// ErrReducerDispatch is wrapped by the error returned when Dispatch is called
// from inside a reducer.
var ErrReducerDispatch = errors.New("store: reducers may not dispatch actions")

// Memory is an in-memory Store.
type Memory struct {
	reducer     Reducer
	state       any
	listeners   subscription.Registry
	dispatching bool
	logger      *slog.Logger
}

// Option configures a Memory store.
type Option func(*Memory)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Memory store. A nil reducer keeps the state unchanged.
func New(reducer Reducer, initial any, opts ...Option) *Memory {
	m := &Memory{
		reducer: reducer,
		state:   initial,
		logger:  slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reducer == nil {
		m.reducer = func(state, _ any) any { return state }
	}
	m.state = m.reducer(m.state, InitAction{})
	return m
}

// State returns the current state.
func (m *Memory) State() any {
	return m.state
}

// Dispatch reduces action and notifies every listener subscribed when the
// commit happens. See Store.Dispatch for dispatches made during a pass.
func (m *Memory) Dispatch(action any) (any, error) {
	if m.dispatching {
		return nil, binderrors.New("B030").Wrap(ErrReducerDispatch)
	}

	m.reduce(action)

	if err := m.listeners.NotifyAll(); err != nil {
		m.logger.Debug("listener failed", "action", actionType(action), "error", err)
		return action, err
	}
	return action, nil
}

func (m *Memory) reduce(action any) {
	m.dispatching = true
	defer func() { m.dispatching = false }()
	m.state = m.reducer(m.state, action)
}

// Subscribe registers fn. A nil fn is ignored.
func (m *Memory) Subscribe(fn func() error) func() {
	unsubscribe, err := m.listeners.Subscribe(fn)
	if err != nil {
		m.logger.Warn("ignoring listener", "error", err)
		return func() {}
	}
	return unsubscribe
}

// ReplaceReducer swaps the reducer and runs InitAction through it without
// notifying listeners.
func (m *Memory) ReplaceReducer(reducer Reducer) {
	if reducer == nil {
		return
	}
	m.reducer = reducer
	m.reduce(InitAction{})
}

// ListenerCount returns the number of subscribed listeners.
func (m *Memory) ListenerCount() int {
	return m.listeners.Len()
}

func actionType(action any) string {
	switch a := action.(type) {
	case Action:
		return a.Type
	case *Action:
		return a.Type
	case string:
		return a
	default:
		return "custom"
	}
}
