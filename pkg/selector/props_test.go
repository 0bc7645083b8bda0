package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentical(t *testing.T) {
	m := map[string]int{"a": 1}
	s := []int{1, 2, 3}
	p := &struct{ n int }{1}
	fn := func() {}
	other := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 1, false},
		{"equal ints", 1, 1, true},
		{"different types", 1, int64(1), false},
		{"equal strings", "ab", "ab", true},
		{"same map", m, m, true},
		{"equal maps are distinct", m, map[string]int{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:2], false},
		{"same pointer", p, p, true},
		{"same func", fn, fn, true},
		{"different funcs", fn, other, false},
		{"comparable structs", struct{ A int }{1}, struct{ A int }{1}, true},
		{"non-comparable structs", struct{ A []int }{s}, struct{ A []int }{s}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identical(tt.a, tt.b))
		})
	}
}

func TestIdenticalClosuresOfSameLiteral(t *testing.T) {
	counter := func(n int) func() int {
		return func() int { return n }
	}
	a, b := counter(1), counter(1)

	assert.True(t, Identical(a, a))
	assert.False(t, Identical(a, b), "two closures of one literal are different values")
}

func TestShallowEqual(t *testing.T) {
	shared := []string{"x"}

	assert.True(t, ShallowEqual(nil, Props{}))
	assert.True(t, ShallowEqual(Props{"a": 1, "b": shared}, Props{"a": 1, "b": shared}))
	assert.False(t, ShallowEqual(Props{"a": 1}, Props{"a": 2}))
	assert.False(t, ShallowEqual(Props{"a": 1}, Props{"b": 1}))
	assert.False(t, ShallowEqual(Props{"a": 1}, Props{"a": 1, "b": 2}))
	assert.False(t, ShallowEqual(Props{"a": []string{"x"}}, Props{"a": []string{"x"}}), "values compare by reference")
}

func TestSameProps(t *testing.T) {
	p := Props{"a": 1}

	assert.True(t, SameProps(p, p))
	assert.True(t, SameProps(nil, nil))
	assert.False(t, SameProps(p, nil))
	assert.False(t, SameProps(p, Props{"a": 1}))
}
