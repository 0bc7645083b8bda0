package fields

import (
	"strings"

	"github.com/vango-dev/storebind/pkg/selector"
)

// Scope decides where in the state a field is stored.
type Scope uint8

const (
	// Instance fields are private to one connected node.
	Instance Scope = iota

	// Component fields are shared by every node of a component.
	Component

	// Shared fields are addressed from the state root.
	Shared
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case Instance:
		return "instance"
	case Component:
		return "component"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// Context is what path functions, getters and setters can read.
type Context struct {
	Props    selector.Props
	State    any
	Dispatch selector.DispatchFunc
}

// Path is a field's location relative to its scope root.
type Path struct {
	keys []string
	fn   func(Context) []string
}

// Dotted splits s on dots.
func Dotted(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path{keys: strings.Split(s, ".")}
}

// Keys uses keys as given.
func Keys(keys ...string) Path {
	return Path{keys: append([]string(nil), keys...)}
}

// PathFunc computes the path on every read and write.
func PathFunc(fn func(Context) []string) Path {
	return Path{fn: fn}
}

// IsZero reports whether no path was declared.
func (p Path) IsZero() bool {
	return len(p.keys) == 0 && p.fn == nil
}

// Dynamic reports whether the path is computed.
func (p Path) Dynamic() bool {
	return p.fn != nil
}

// String returns the dotted form, or "<func>" for a computed path.
func (p Path) String() string {
	if p.fn != nil {
		return "<func>"
	}
	return strings.Join(p.keys, ".")
}

func (p Path) resolve(ctx Context) []string {
	if p.fn != nil {
		return p.fn(ctx)
	}
	return p.keys
}

// SetFunc writes a field value. It is the type of set<Name> props.
type SetFunc func(value any) (any, error)

// Getter replaces the default read. defaultGetter reads the field from state.
type Getter func(ctx Context, defaultGetter func() any) any

// Setter replaces the default write. defaultSetter dispatches a SetAction.
type Setter func(ctx Context, value any, defaultSetter SetFunc) (any, error)

// Field declares one store-backed prop.
type Field struct {
	// Name is the prop name. The default is the field key.
	Name string

	Scope Scope

	// Path defaults to the field key.
	Path Path

	// Default is returned when nothing is stored at the path.
	Default any

	Getter Getter
	Setter Setter

	// ReadOnly fields get no setter prop.
	ReadOnly bool
}

// Info describes a field in the InfoProp prop.
type Info struct {
	Scope     Scope
	Path      Path
	FinalPath []string
}
