package fields

import (
	"github.com/vango-dev/storebind/pkg/store"
)

// SetAction writes Value at Path in a map-shaped state.
type SetAction struct {
	Path  []string
	Value any
}

// Reducer applies SetAction and hands every other action to next. A nil next
// keeps the state unchanged.
func Reducer(next store.Reducer) store.Reducer {
	return func(state, action any) any {
		if set, ok := action.(SetAction); ok && len(set.Path) > 0 {
			return SetIn(state, set.Path, set.Value)
		}
		if next == nil {
			return state
		}
		return next(state, action)
	}
}

// Get reads the value at path in nested map[string]any values.
func Get(state any, path []string) (any, bool) {
	cur := state
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetIn returns a copy of state with value stored at path. Only the maps
// along path are copied; everything else is shared with state. Non-map values
// on the way are replaced by new maps.
func SetIn(state any, path []string, value any) any {
	if len(path) == 0 {
		return value
	}
	m, _ := state.(map[string]any)
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[path[0]] = SetIn(m[path[0]], path[1:], value)
	return out
}
