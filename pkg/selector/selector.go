package selector

// Config describes one connected node's pipeline.
type Config struct {
	// Name is the node's display name, used in errors.
	Name string

	// MapState derives props from the store state.
	MapState StateSelector

	// MapDispatch derives props from dispatch.
	MapDispatch DispatchSelector

	// Merge combines the stage outputs. Nil means DefaultMerge.
	Merge MergeFunc

	// Impure disables memoization: every Select reruns every stage and
	// returns a new map.
	Impure bool
}

// Selector holds the memoized pipeline of one node. It is not safe for
// concurrent use.
type Selector struct {
	name     string
	impure   bool
	dispatch DispatchFunc
	merge    MergeFunc

	mapState        func(state any, own Props) (Props, error)
	stateDepends    bool
	mapDispatch     func(dispatch DispatchFunc, own Props) (Props, error)
	dispatchDepends bool

	initialized   bool
	state         any
	own           Props
	stateProps    Props
	dispatchProps Props
	merged        Props
	err           error
}

// New resolves factories and validates cfg. The returned error, if any, is a
// *errors.BindError with code B003.
func New(cfg Config, dispatch DispatchFunc) (*Selector, error) {
	s := &Selector{
		name:     cfg.Name,
		impure:   cfg.Impure,
		dispatch: dispatch,
		merge:    cfg.Merge,
	}
	if s.merge == nil {
		s.merge = DefaultMerge
	}

	if ms := cfg.MapState.resolve(cfg.Impure); !ms.IsZero() {
		s.mapState = ms.fn
		s.stateDepends = ms.shape == ShapeWithProps
	}

	md := cfg.MapDispatch.resolve()
	if be := md.validate(); be != nil {
		return nil, be.WithNode(cfg.Name)
	}
	if md.IsZero() {
		md = DefaultDispatch()
	}
	s.mapDispatch = md.fn
	s.dispatchDepends = md.shape == ShapeWithProps

	return s, nil
}

// Name returns the node name.
func (s *Selector) Name() string { return s.name }

// HandlesState reports whether the pipeline reads the store state at all.
// Nodes without a state stage do not need store notifications.
func (s *Selector) HandlesState() bool { return s.mapState != nil }

// DependsOnOwnProps reports whether any stage reads own props.
func (s *Selector) DependsOnOwnProps() bool {
	return s.stateDepends || s.dispatchDepends
}

// Err returns the sticky error, if any.
func (s *Selector) Err() error { return s.err }

// Select returns the final props for state and own. It returns the previous
// map when nothing it depends on changed.
func (s *Selector) Select(state any, own Props) (Props, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.impure || !s.initialized {
		return s.computeAll(state, own)
	}

	ownChanged := !ShallowEqual(own, s.own)
	stateChanged := s.mapState != nil && !Identical(state, s.state)
	s.state = state
	if ownChanged {
		s.own = own
	}
	if !ownChanged && !stateChanged {
		return s.merged, nil
	}

	stagesChanged := false
	if stateChanged || (ownChanged && s.stateDepends) {
		next, err := s.runState(state, s.own)
		if err != nil {
			return nil, err
		}
		if !ShallowEqual(next, s.stateProps) {
			s.stateProps = next
			stagesChanged = true
		}
	}
	if ownChanged && s.dispatchDepends {
		next, err := s.runDispatch(s.own)
		if err != nil {
			return nil, err
		}
		if !ShallowEqual(next, s.dispatchProps) {
			s.dispatchProps = next
			stagesChanged = true
		}
	}
	if !stagesChanged && !ownChanged {
		return s.merged, nil
	}

	merged, err := s.runMerge()
	if err != nil {
		return nil, err
	}
	if !ShallowEqual(merged, s.merged) {
		s.merged = merged
	}
	return s.merged, nil
}

func (s *Selector) computeAll(state any, own Props) (Props, error) {
	s.state = state
	s.own = own

	stateProps, err := s.runState(state, own)
	if err != nil {
		return nil, err
	}
	dispatchProps, err := s.runDispatch(own)
	if err != nil {
		return nil, err
	}
	s.stateProps = stateProps
	s.dispatchProps = dispatchProps

	merged, err := s.runMerge()
	if err != nil {
		return nil, err
	}
	s.merged = merged
	s.initialized = true
	return merged, nil
}

func (s *Selector) runState(state any, own Props) (Props, error) {
	if s.mapState == nil {
		if s.stateProps != nil {
			return s.stateProps, nil
		}
		return Props{}, nil
	}
	props, err := s.mapState(state, own)
	return s.check(StageMapState, props, err)
}

func (s *Selector) runDispatch(own Props) (Props, error) {
	props, err := s.mapDispatch(s.dispatch, own)
	return s.check(StageMapDispatch, props, err)
}

func (s *Selector) runMerge() (Props, error) {
	props, err := s.merge(s.stateProps, s.dispatchProps, s.own)
	return s.check(StageMerge, props, err)
}

// check turns a stage failure into the sticky error.
func (s *Selector) check(stage Stage, props Props, err error) (Props, error) {
	if err == nil && props != nil {
		return props, nil
	}
	s.err = newDerivationError(stage, s.name, err)
	return nil, s.err
}
