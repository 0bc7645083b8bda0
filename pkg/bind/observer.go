package bind

import (
	"context"

	"github.com/vango-dev/storebind/pkg/selector"
)

// Cause says why a Connector recomputed.
type Cause uint8

const (
	CauseInitial Cause = iota
	CauseStore
	CauseOwnProps
	CauseMount
)

// String returns a human-readable name for the cause.
func (c Cause) String() string {
	switch c {
	case CauseInitial:
		return "initial"
	case CauseStore:
		return "store"
	case CauseOwnProps:
		return "own-props"
	case CauseMount:
		return "mount"
	default:
		return "unknown"
	}
}

// Update is reported after every recompute of a Connector.
type Update struct {
	// NodeID identifies the Connector.
	NodeID uint64

	// Node is the binding's display name.
	Node string

	// Props is the current final props map, nil when Err is set.
	Props selector.Props

	// Changed is false when Props is the same map as before.
	Changed bool

	// Err is the sticky derivation error, if any.
	Err error

	// Cause is what triggered the recompute.
	Cause Cause
}

// Observer receives engine events. Implementations must not dispatch.
type Observer interface {
	// ObservePass wraps one notify pass of a Provider. It must call next
	// exactly once and return its error.
	ObservePass(ctx context.Context, next func(ctx context.Context) error) error

	// ObserveUpdate is called for every Connector recompute. ctx is the
	// context of the surrounding pass, or context.Background().
	ObserveUpdate(ctx context.Context, u Update)

	// ObserveMount is called when a Connector is mounted or unmounted.
	ObserveMount(nodeID uint64, node string, mounted bool)
}

// NopObserver ignores every event. Embed it to implement part of Observer.
type NopObserver struct{}

// ObservePass calls next.
func (NopObserver) ObservePass(ctx context.Context, next func(ctx context.Context) error) error {
	return next(ctx)
}

// ObserveUpdate does nothing.
func (NopObserver) ObserveUpdate(context.Context, Update) {}

// ObserveMount does nothing.
func (NopObserver) ObserveMount(uint64, string, bool) {}

// Observers chains observers. Passes nest in order: the first observer wraps
// all the others.
func Observers(observers ...Observer) Observer {
	chain := make(observerChain, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			chain = append(chain, o)
		}
	}
	switch len(chain) {
	case 0:
		return NopObserver{}
	case 1:
		return chain[0]
	}
	return chain
}

type observerChain []Observer

func (c observerChain) ObservePass(ctx context.Context, next func(ctx context.Context) error) error {
	return c.pass(0, ctx, next)
}

func (c observerChain) pass(i int, ctx context.Context, next func(ctx context.Context) error) error {
	if i == len(c) {
		return next(ctx)
	}
	return c[i].ObservePass(ctx, func(ctx context.Context) error {
		return c.pass(i+1, ctx, next)
	})
}

func (c observerChain) ObserveUpdate(ctx context.Context, u Update) {
	for _, o := range c {
		o.ObserveUpdate(ctx, u)
	}
}

func (c observerChain) ObserveMount(nodeID uint64, node string, mounted bool) {
	for _, o := range c {
		o.ObserveMount(nodeID, node, mounted)
	}
}
