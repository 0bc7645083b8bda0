package subscription

import "errors"

// entry is one registration. Pointer identity distinguishes two
// registrations of the same function.
type entry struct {
	fn func() error
}

// Registry is an ordered, copy-on-write set of listeners.
//
// Registry is not safe for concurrent use; a tree and its store are driven
// from a single goroutine.
type Registry struct {
	// current is the snapshot iterated by the pass in progress.
	current []*entry

	// next receives mutations. It aliases current until the first write
	// after a pass started.
	next []*entry

	// shared is true while next aliases current.
	shared bool
}

// Subscribe appends fn and returns a function removing it again. The
// returned function is idempotent.
func (r *Registry) Subscribe(fn func() error) (func(), error) {
	if fn == nil {
		return nil, NewConfigurationError("B002")
	}

	e := &entry{fn: fn}
	r.ensureCanMutate()
	r.next = append(r.next, e)

	subscribed := true
	return func() {
		if !subscribed {
			return
		}
		subscribed = false
		r.remove(e)
	}, nil
}

// NotifyAll calls every listener subscribed when the pass starts, in
// subscription order. All of them run even when some fail; the failures are
// joined.
func (r *Registry) NotifyAll() error {
	r.current = r.next
	r.shared = true
	listeners := r.current

	var errs []error
	for _, e := range listeners {
		if err := e.fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of listeners the next pass will call.
func (r *Registry) Len() int {
	return len(r.next)
}

// Clear drops every listener. A pass in progress still completes over its
// snapshot.
func (r *Registry) Clear() {
	r.next = nil
	r.shared = false
}

func (r *Registry) remove(e *entry) {
	r.ensureCanMutate()
	for i, existing := range r.next {
		if existing == e {
			r.next = append(r.next[:i], r.next[i+1:]...)
			return
		}
	}
}

// ensureCanMutate clones next on the first write after a snapshot was taken.
func (r *Registry) ensureCanMutate() {
	if !r.shared {
		return
	}
	r.next = append([]*entry(nil), r.next...)
	r.shared = false
}
