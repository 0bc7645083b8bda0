package fields

import (
	"slices"
	"sort"
	"strconv"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vango-dev/storebind/pkg/selector"
)

// InfoProp is the prop holding a map[string]Info keyed by field key.
const InfoProp = "fields"

// Set is a group of fields attached to one component.
type Set struct {
	component string
	keys      []string
	fields    map[string]Field
	instances atomic.Uint64
}

// New builds a Set. An empty component takes the binding's name.
func New(component string, fields map[string]Field) *Set {
	s := &Set{
		component: component,
		fields:    make(map[string]Field, len(fields)),
	}
	for key, f := range fields {
		if f.Name == "" {
			f.Name = key
		}
		if f.Path.IsZero() {
			f.Path = Keys(key)
		}
		s.fields[key] = f
		s.keys = append(s.keys, key)
	}
	sort.Strings(s.keys)
	return s
}

// Instances returns how many nodes have been connected with this set.
func (s *Set) Instances() uint64 {
	return s.instances.Load()
}

// SetterName returns the setter prop name for a field named name.
func SetterName(name string) string {
	return "set" + cases.Title(language.Und, cases.NoLower).String(name)
}

// Stages returns the stages for one new node. Instance ids are allocated here,
// counting from 1.
func (s *Set) Stages(node string, dispatch selector.DispatchFunc) (selector.StateSelector, selector.DispatchSelector) {
	component := s.component
	if component == "" {
		component = node
	}
	n := &instance{
		set:       s,
		component: component,
		id:        strconv.FormatUint(s.instances.Add(1), 10),
		dispatch:  dispatch,
	}
	return selector.FromStateAndProps(n.mapState), selector.FromDispatch(n.mapDispatch)
}

// instance is the per-node state shared by both stages.
type instance struct {
	set       *Set
	component string
	id        string
	dispatch  selector.DispatchFunc

	state any
	own   selector.Props
	info  map[string]Info
}

func (n *instance) context() Context {
	return Context{Props: n.own, State: n.state, Dispatch: n.dispatch}
}

// finalPath prefixes the field path with its scope root.
func (n *instance) finalPath(f Field, ctx Context) []string {
	path := f.Path.resolve(ctx)
	var root []string
	switch f.Scope {
	case Instance:
		root = []string{n.component, "instances", n.id}
	case Component:
		root = []string{n.component}
	}
	out := make([]string, 0, len(root)+len(path))
	out = append(out, root...)
	return append(out, path...)
}

func (n *instance) mapState(state any, own selector.Props) (selector.Props, error) {
	n.state, n.own = state, own
	ctx := n.context()

	props := make(selector.Props, len(n.set.keys)+1)
	info := make(map[string]Info, len(n.set.keys))
	same := n.info != nil
	for _, key := range n.set.keys {
		f := n.set.fields[key]
		path := n.finalPath(f, ctx)
		info[key] = Info{Scope: f.Scope, Path: f.Path, FinalPath: path}
		if same && !slices.Equal(n.info[key].FinalPath, path) {
			same = false
		}

		read := func() any {
			if v, ok := Get(state, path); ok {
				return v
			}
			return f.Default
		}
		if f.Getter != nil {
			props[f.Name] = f.Getter(ctx, read)
		} else {
			props[f.Name] = read()
		}
	}
	if !same {
		n.info = info
	}
	props[InfoProp] = n.info
	return props, nil
}

func (n *instance) mapDispatch(dispatch selector.DispatchFunc) (selector.Props, error) {
	props := make(selector.Props, len(n.set.keys))
	for _, key := range n.set.keys {
		f := n.set.fields[key]
		if f.ReadOnly {
			continue
		}
		props[SetterName(f.Name)] = n.setter(f, dispatch)
	}
	return props, nil
}

func (n *instance) setter(f Field, dispatch selector.DispatchFunc) SetFunc {
	write := func(value any) (any, error) {
		return dispatch(SetAction{Path: n.finalPath(f, n.context()), Value: value})
	}
	if f.Setter == nil {
		return write
	}
	return func(value any) (any, error) {
		return f.Setter(n.context(), value, write)
	}
}
