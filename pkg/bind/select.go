package bind

import (
	binderrors "github.com/vango-dev/storebind/internal/errors"
	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/subscription"
)

// SelectOption configures a Selection.
type SelectOption func(*Selection)

// WithEqual sets how a new value is compared with the previous one. The
// default is selector.Identical.
func WithEqual(fn func(a, b any) bool) SelectOption {
	return func(s *Selection) {
		if fn != nil {
			s.equal = fn
		}
	}
}

// OnChange registers a callback run when the value changes or fn fails.
func OnChange(fn func(value any, err error)) SelectOption {
	return func(s *Selection) {
		s.onChange = fn
	}
}

// Selection is a single value read from the store under a parent. It is a
// leaf: nothing attaches below it, and it has no props or dispatch stage.
type Selection struct {
	env      *env
	sub      *subscription.Subscription
	fn       func(state any) (any, error)
	equal    func(a, b any) bool
	onChange func(value any, err error)

	state any
	value any
	err   error
}

// Select subscribes fn under parent. fn runs now and again after each commit
// that replaces the state; the value is kept while equal reports it
// unchanged. A Selection under a Connector is notified after that Connector
// has recomputed.
func Select(parent Parent, fn func(state any) (any, error), opts ...SelectOption) (*Selection, error) {
	if parent == nil {
		return nil, storeNotFound("Select")
	}
	e := parent.environment()
	if e == nil || e.store == nil {
		return nil, storeNotFound("Select")
	}
	if fn == nil {
		return nil, asConfigurationError(binderrors.New("B003").WithDetail("Select needs a selector function."), "Select")
	}

	s := &Selection{env: e, fn: fn, equal: selector.Identical}
	for _, opt := range opts {
		opt(s)
	}
	s.sub = subscription.New(e.store, parent.Subscription(), s.handleChange)
	if err := s.sub.Bind(); err != nil {
		return nil, err
	}
	s.state = e.store.State()
	s.value, s.err = fn(s.state)
	return s, nil
}

// Value returns the current value, or the error of the last run of fn.
func (s *Selection) Value() (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.value, nil
}

// Active reports whether the selection still receives commits.
func (s *Selection) Active() bool {
	return s.sub.Active()
}

// Close stops the selection. It is idempotent.
func (s *Selection) Close() {
	s.sub.Unbind()
}

func (s *Selection) handleChange() error {
	next := s.env.store.State()
	if s.err == nil && selector.Identical(next, s.state) {
		return nil
	}
	s.state = next

	value, err := s.fn(next)
	if err != nil {
		s.err = err
		s.notify()
		return err
	}
	failed := s.err != nil
	s.err = nil
	if !failed && s.equal(s.value, value) {
		return nil
	}
	s.value = value
	s.notify()
	return nil
}

func (s *Selection) notify() {
	if s.onChange != nil {
		s.onChange(s.value, s.err)
	}
}
