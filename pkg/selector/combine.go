package selector

// DefaultDispatch is the stage used when a node declares no mapDispatch: it
// passes dispatch through as the "dispatch" prop.
func DefaultDispatch() DispatchSelector {
	return FromDispatch(func(dispatch DispatchFunc) (Props, error) {
		return Props{"dispatch": dispatch}, nil
	})
}

// CombineState runs a and then b and returns the union of their props, keys
// from b winning. The combined stage reads own props if either part does; a
// part built with FromState still reruns only when the state changes.
// Factories are resolved once per node, as for any other stage.
func CombineState(a, b StateSelector) StateSelector {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	parts := [2]StateSelector{a, b}
	return StateSelector{
		shape: ShapeFactory,
		factory: func() StateSelector {
			return combineResolved(a, b, false)
		},
		parts: &parts,
	}
}

func combineResolved(a, b StateSelector, impure bool) StateSelector {
	ra, rb := a.resolve(impure), b.resolve(impure)
	switch {
	case ra.IsZero():
		return rb
	case rb.IsZero():
		return ra
	}
	shape := widest(ra.shape, rb.shape)
	fa, fb := ra.fn, rb.fn
	if shape == ShapeWithProps && !impure {
		fa, fb = memoByState(ra), memoByState(rb)
	}
	return StateSelector{
		shape: shape,
		fn: func(state any, own Props) (Props, error) {
			pa, err := fa(state, own)
			if err != nil || pa == nil {
				return nil, err
			}
			pb, err := fb(state, own)
			if err != nil || pb == nil {
				return nil, err
			}
			return union(pa, pb), nil
		},
	}
}

// memoByState keeps the last result of a state-only stage and reuses it
// while the state is Identical. Other stages are returned unchanged.
func memoByState(s StateSelector) func(state any, own Props) (Props, error) {
	if s.shape != ShapeInputOnly {
		return s.fn
	}
	var (
		seen  bool
		last  any
		props Props
	)
	return func(state any, own Props) (Props, error) {
		if seen && Identical(state, last) {
			return props, nil
		}
		p, err := s.fn(state, own)
		if err != nil || p == nil {
			return p, err
		}
		seen, last, props = true, state, p
		return p, nil
	}
}

// CombineDispatch is CombineState for dispatch stages. An absent a stands for
// DefaultDispatch, so combining never hides the "dispatch" prop.
func CombineDispatch(a, b DispatchSelector) DispatchSelector {
	if b.IsZero() {
		return a
	}
	if a.IsZero() {
		a = DefaultDispatch()
	}
	return DispatchFactory(func() DispatchSelector {
		ra, rb := a.resolve(), b.resolve()
		if ra.IsZero() {
			ra = DefaultDispatch()
		}
		if rb.IsZero() {
			return ra
		}
		invalid := append(append([]string(nil), ra.invalid...), rb.invalid...)
		return DispatchSelector{
			shape:   widest(ra.shape, rb.shape),
			invalid: invalid,
			fn: func(dispatch DispatchFunc, own Props) (Props, error) {
				pa, err := ra.fn(dispatch, own)
				if err != nil || pa == nil {
					return nil, err
				}
				pb, err := rb.fn(dispatch, own)
				if err != nil || pb == nil {
					return nil, err
				}
				return union(pa, pb), nil
			},
		}
	})
}

func widest(a, b Shape) Shape {
	if a == ShapeWithProps || b == ShapeWithProps {
		return ShapeWithProps
	}
	return ShapeInputOnly
}

func union(a, b Props) Props {
	out := clone(a, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
