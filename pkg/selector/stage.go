package selector

import (
	"fmt"
	"sort"

	binderrors "github.com/vango-dev/storebind/internal/errors"
)

// DispatchFunc sends an action to the store.
type DispatchFunc func(action any) (any, error)

// Shape declares which inputs a stage reads.
type Shape uint8

const (
	// ShapeNone marks an absent stage.
	ShapeNone Shape = iota

	// ShapeInputOnly stages read only their primary input (state or dispatch).
	ShapeInputOnly

	// ShapeWithProps stages also read own props.
	ShapeWithProps

	// ShapeFactory stages build the real stage once per node.
	ShapeFactory
)

// String returns a human-readable name for the shape.
func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeInputOnly:
		return "input-only"
	case ShapeWithProps:
		return "with-props"
	case ShapeFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// StateSelector is the mapStateToProps stage. The zero value is an absent
// stage, which yields empty props and does not subscribe the node.
type StateSelector struct {
	shape   Shape
	fn      func(state any, own Props) (Props, error)
	factory func() StateSelector

	// parts is set on stages built by CombineState.
	parts *[2]StateSelector
}

// FromState builds a stage that reads only the store state.
func FromState(fn func(state any) (Props, error)) StateSelector {
	if fn == nil {
		return StateSelector{}
	}
	return StateSelector{
		shape: ShapeInputOnly,
		fn: func(state any, _ Props) (Props, error) {
			return fn(state)
		},
	}
}

// FromStateAndProps builds a stage that reads the state and own props.
func FromStateAndProps(fn func(state any, own Props) (Props, error)) StateSelector {
	if fn == nil {
		return StateSelector{}
	}
	return StateSelector{shape: ShapeWithProps, fn: fn}
}

// StateFactory builds a stage whose real function is created by fn once per
// node.
func StateFactory(fn func() StateSelector) StateSelector {
	if fn == nil {
		return StateSelector{}
	}
	return StateSelector{shape: ShapeFactory, factory: fn}
}

// Shape returns the declared shape.
func (s StateSelector) Shape() Shape { return s.shape }

// IsZero reports whether the stage is absent.
func (s StateSelector) IsZero() bool { return s.shape == ShapeNone }

// resolve evaluates factories until a concrete stage remains. Combined
// stages memoize their state-only parts unless impure is set.
func (s StateSelector) resolve(impure bool) StateSelector {
	for {
		if s.parts != nil {
			return combineResolved(s.parts[0], s.parts[1], impure)
		}
		if s.shape != ShapeFactory {
			return s
		}
		s = s.factory()
	}
}

// DispatchSelector is the mapDispatchToProps stage. The zero value yields
// {"dispatch": dispatch}.
type DispatchSelector struct {
	shape   Shape
	fn      func(dispatch DispatchFunc, own Props) (Props, error)
	factory func() DispatchSelector

	// invalid names action creators that cannot be bound.
	invalid []string
}

// FromDispatch builds a stage that reads only dispatch. It runs once per node.
func FromDispatch(fn func(dispatch DispatchFunc) (Props, error)) DispatchSelector {
	if fn == nil {
		return DispatchSelector{}
	}
	return DispatchSelector{
		shape: ShapeInputOnly,
		fn: func(dispatch DispatchFunc, _ Props) (Props, error) {
			return fn(dispatch)
		},
	}
}

// FromDispatchAndProps builds a stage that reads dispatch and own props.
func FromDispatchAndProps(fn func(dispatch DispatchFunc, own Props) (Props, error)) DispatchSelector {
	if fn == nil {
		return DispatchSelector{}
	}
	return DispatchSelector{shape: ShapeWithProps, fn: fn}
}

// DispatchFactory builds a stage whose real function is created by fn once
// per node.
func DispatchFactory(fn func() DispatchSelector) DispatchSelector {
	if fn == nil {
		return DispatchSelector{}
	}
	return DispatchSelector{shape: ShapeFactory, factory: fn}
}

// ActionCreator builds an action from call arguments.
type ActionCreator func(args ...any) any

// BoundAction is an ActionCreator wrapped to dispatch its action.
type BoundAction func(args ...any) (any, error)

// ActionCreators binds every creator to dispatch. The bound functions are
// created once per node.
func ActionCreators(creators map[string]ActionCreator) DispatchSelector {
	var invalid []string
	bound := make(map[string]ActionCreator, len(creators))
	for name, create := range creators {
		if create == nil || name == "" {
			invalid = append(invalid, fmt.Sprintf("%q", name))
			continue
		}
		bound[name] = create
	}
	sort.Strings(invalid)

	return DispatchSelector{
		shape:   ShapeInputOnly,
		invalid: invalid,
		fn: func(dispatch DispatchFunc, _ Props) (Props, error) {
			props := make(Props, len(bound))
			for name, create := range bound {
				create := create
				props[name] = BoundAction(func(args ...any) (any, error) {
					return dispatch(create(args...))
				})
			}
			return props, nil
		},
	}
}

// Shape returns the declared shape.
func (s DispatchSelector) Shape() Shape { return s.shape }

// IsZero reports whether the stage is absent.
func (s DispatchSelector) IsZero() bool { return s.shape == ShapeNone }

func (s DispatchSelector) resolve() DispatchSelector {
	for s.shape == ShapeFactory {
		s = s.factory()
	}
	return s
}

func (s DispatchSelector) validate() *binderrors.BindError {
	if len(s.invalid) == 0 {
		return nil
	}
	return binderrors.New("B003").WithDetail(fmt.Sprintf("action creators %v are nil or unnamed", s.invalid))
}

// MergeFunc combines the stage outputs into the final props.
type MergeFunc func(stateProps, dispatchProps, own Props) (Props, error)

// DefaultMerge copies own props, then state props, then dispatch props into a
// new map; later keys win.
func DefaultMerge(stateProps, dispatchProps, own Props) (Props, error) {
	out := clone(own, len(stateProps)+len(dispatchProps))
	for k, v := range stateProps {
		out[k] = v
	}
	for k, v := range dispatchProps {
		out[k] = v
	}
	return out, nil
}
