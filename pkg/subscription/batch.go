package subscription

import "errors"

// DefaultMaxPasses bounds how many times one flush re-runs because of
// commits made during its own passes.
const DefaultMaxPasses = 100

// BatchFunc runs fn, possibly inside a host-specific batching scope. It must
// call fn exactly once before returning.
type BatchFunc func(fn func())

// Immediate is the default BatchFunc: it calls fn synchronously.
func Immediate(fn func()) {
	fn()
}

// Scheduler turns store notifications into flushes that never overlap.
//
// The only state kept between flushes is the in-flush guard; the dirty flag
// is reset at the start of every flush.
type Scheduler struct {
	batch     BatchFunc
	maxPasses int

	flushing bool
	dirty    bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithMaxPasses sets the pass limit of a single flush. Values below 1 keep
// the default.
func WithMaxPasses(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

// NewScheduler creates a Scheduler using batch, or Immediate when batch is nil.
func NewScheduler(batch BatchFunc, opts ...SchedulerOption) *Scheduler {
	if batch == nil {
		batch = Immediate
	}
	s := &Scheduler{
		batch:     batch,
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// Flush runs fn through the batch function. Called while a flush is already
// running, Flush only marks that flush dirty and returns nil; the running
// flush calls fn again once its current pass is over.
func (s *Scheduler) Flush(fn func() error) error {
	if s.flushing {
		s.dirty = true
		return nil
	}

	s.flushing = true
	s.dirty = false
	defer func() {
		s.flushing = false
		s.dirty = false
	}()

	var errs []error
	for pass := 1; ; pass++ {
		s.dirty = false
		s.batch(func() {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		})
		if !s.dirty {
			break
		}
		if pass >= s.maxPasses {
			errs = append(errs, stormError(pass))
			break
		}
	}
	return errors.Join(errs...)
}
