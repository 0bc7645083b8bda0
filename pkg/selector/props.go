package selector

import (
	"reflect"
	"unsafe"
)

// Props is the flat key/value mapping handed to a presentation node.
type Props map[string]any

// SameProps reports whether a and b are the same map instance.
func SameProps(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// ShallowEqual reports whether a and b have the same keys and Identical
// values for every key.
func ShallowEqual(a, b Props) bool {
	if SameProps(a, b) {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !Identical(va, vb) {
			return false
		}
	}
	return true
}

// Identical compares two values by reference for reference kinds (maps,
// pointers, channels, slices and funcs) and by value for comparable values.
// Non-comparable values that are not references are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Func:
		return funcValue(a) == funcValue(b)
	}

	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}

// funcValue returns the closure pointer stored in the interface data word.
// reflect's Func Pointer is the code address, shared by every closure of the
// same literal, so it cannot tell two bound callbacks apart.
func funcValue(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}

// clone returns a shallow copy of p with room for extra keys.
func clone(p Props, extra int) Props {
	out := make(Props, len(p)+extra)
	for k, v := range p {
		out[k] = v
	}
	return out
}
