package bind

import (
	"github.com/vango-dev/storebind/pkg/selector"
)

// FieldSource contributes extra stages to every node of a Binding. Stages is
// called once per Connect, so both stages can share per-node state.
type FieldSource interface {
	Stages(node string, dispatch selector.DispatchFunc) (selector.StateSelector, selector.DispatchSelector)
}

// Binding is a reusable connect definition. It is immutable once built and
// may be connected any number of times.
type Binding struct {
	name        string
	mapState    selector.StateSelector
	mapDispatch selector.DispatchSelector
	merge       selector.MergeFunc
	impure      bool
	onUpdate    func(Update)
	fields      []FieldSource
	renderCount string
}

// Option configures a Binding.
type Option func(*Binding)

// WithName sets the display name used in errors, logs and devtools.
func WithName(name string) Option {
	return func(b *Binding) {
		b.name = name
	}
}

// WithMapState sets the state stage. Without one the node does not subscribe.
func WithMapState(s selector.StateSelector) Option {
	return func(b *Binding) {
		b.mapState = s
	}
}

// WithMapDispatch sets the dispatch stage. The default passes dispatch
// through as the "dispatch" prop.
func WithMapDispatch(s selector.DispatchSelector) Option {
	return func(b *Binding) {
		b.mapDispatch = s
	}
}

// WithMerge sets the merge function. The default is selector.DefaultMerge.
func WithMerge(fn selector.MergeFunc) Option {
	return func(b *Binding) {
		b.merge = fn
	}
}

// WithPure toggles memoization. Bindings are pure unless told otherwise.
func WithPure(pure bool) Option {
	return func(b *Binding) {
		b.impure = !pure
	}
}

// WithOnUpdate registers a callback for every recompute of every node of
// this binding.
func WithOnUpdate(fn func(Update)) Option {
	return func(b *Binding) {
		b.onUpdate = fn
	}
}

// WithFields merges the stages of src into the binding's own. State props
// from the binding win over field values; field setters win over dispatch
// props of the same name.
func WithFields(src FieldSource) Option {
	return func(b *Binding) {
		if src != nil {
			b.fields = append(b.fields, src)
		}
	}
}

// WithRenderCount adds a prop named prop holding how many distinct props maps
// the node has produced.
func WithRenderCount(prop string) Option {
	return func(b *Binding) {
		b.renderCount = prop
	}
}

// New builds a Binding.
func New(opts ...Option) *Binding {
	b := &Binding{name: "Connect"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the display name.
func (b *Binding) Name() string {
	return b.name
}

func (b *Binding) config(dispatch selector.DispatchFunc) selector.Config {
	mapState, mapDispatch := b.mapState, b.mapDispatch
	for _, src := range b.fields {
		fs, fd := src.Stages(b.name, dispatch)
		mapState = selector.CombineState(fs, mapState)
		mapDispatch = selector.CombineDispatch(mapDispatch, fd)
	}
	return selector.Config{
		Name:        b.name,
		MapState:    mapState,
		MapDispatch: mapDispatch,
		Merge:       b.merge,
		Impure:      b.impure,
	}
}
