// Package fields declares props that live at well-known places in a
// map-shaped store state.
//
// A Set is attached to a binding with bind.WithFields. For each field the
// connected node gets the value as a prop and, unless the field is read-only,
// a set<Name> prop that writes it back:
//
//	form := fields.New("LoginForm", map[string]fields.Field{
//	    "user":   {Default: ""},
//	    "locale": {Scope: fields.Shared, Path: fields.Dotted("settings.locale")},
//	})
//	login := bind.New(bind.WithName("LoginForm"), bind.WithFields(form))
//
// Instance fields are stored per connected node under
// [component "instances" <id> ...path], component fields under
// [component ...path], and shared fields at path itself. Writes are
// dispatched as SetAction values, which Reducer applies.
package fields
