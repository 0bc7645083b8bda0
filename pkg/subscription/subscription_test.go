package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a minimal store side: one Registry of change listeners.
type fakeSource struct {
	listeners    Registry
	unsubscribes int
}

func (f *fakeSource) Subscribe(fn func() error) func() {
	unsubscribe, err := f.listeners.Subscribe(fn)
	if err != nil {
		panic(err)
	}
	return func() {
		f.unsubscribes++
		unsubscribe()
	}
}

func (f *fakeSource) commit() error {
	return f.listeners.NotifyAll()
}

func TestSubscriptionLifecycle(t *testing.T) {
	src := &fakeSource{}
	s := New(src, nil, func() error { return nil })

	assert.Equal(t, "idle", s.State())
	require.NoError(t, s.Bind())
	require.NoError(t, s.Bind())
	assert.True(t, s.IsBound())
	assert.Equal(t, 1, src.listeners.Len())

	s.Unbind()
	s.Unbind()
	assert.True(t, s.IsClosed())
	assert.Equal(t, 1, src.unsubscribes)
	assert.Zero(t, src.listeners.Len())

	// closed is terminal
	require.NoError(t, s.Bind())
	assert.True(t, s.IsClosed())
	assert.Zero(t, src.listeners.Len())
}

func TestSubscriptionUnbindNeverBound(t *testing.T) {
	s := New(&fakeSource{}, nil, func() error { return nil })
	s.Unbind()
	assert.True(t, s.IsClosed())
	assert.NoError(t, s.NotifyNested())
}

func TestSubscriptionBindWithoutSource(t *testing.T) {
	s := New(nil, nil, func() error { return nil })

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Bind(), &cfgErr)
	assert.Equal(t, "B001", cfgErr.Code)
	assert.False(t, s.IsBound())
}

func TestSubscriptionBindWithoutCallback(t *testing.T) {
	s := New(&fakeSource{}, nil, nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Bind(), &cfgErr)
	assert.Equal(t, "B002", cfgErr.Code)
}

func TestChildRegistersWithParentNotSource(t *testing.T) {
	src := &fakeSource{}
	root := New(src, nil, nil)
	var order []string

	root.onChange = func() error {
		order = append(order, "root")
		return root.NotifyNested()
	}
	child := New(src, root, func() error {
		order = append(order, "child")
		return nil
	})

	require.NoError(t, child.Bind())
	assert.True(t, root.IsBound(), "adding a nested listener binds the parent")
	assert.Equal(t, 1, src.listeners.Len(), "only the root talks to the source")
	assert.Equal(t, 1, root.NestedCount())

	require.NoError(t, src.commit())
	assert.Equal(t, []string{"root", "child"}, order)
}

func TestNotifyOrderIsTopDown(t *testing.T) {
	src := &fakeSource{}
	var order []string

	var root, a, b, a1 *Subscription
	node := func(name string, self **Subscription) func() error {
		return func() error {
			order = append(order, name)
			return (*self).NotifyNested()
		}
	}

	root = New(src, nil, node("root", &root))
	a = New(src, root, node("a", &a))
	b = New(src, root, node("b", &b))
	a1 = New(src, a, node("a1", &a1))

	// bind leaf first: order of Bind calls must not matter
	require.NoError(t, a1.Bind())
	require.NoError(t, b.Bind())

	require.NoError(t, src.commit())
	assert.Equal(t, []string{"root", "a", "a1", "b"}, order)
}

func TestUnbindDuringPassExcludesSubtree(t *testing.T) {
	src := &fakeSource{}
	var order []string

	var root, a, b, b1 *Subscription
	root = New(src, nil, func() error {
		order = append(order, "root")
		return root.NotifyNested()
	})
	a = New(src, root, func() error {
		order = append(order, "a")
		b.Unbind()
		return nil
	})
	b = New(src, root, func() error {
		order = append(order, "b")
		return b.NotifyNested()
	})
	b1 = New(src, b, func() error {
		order = append(order, "b1")
		return nil
	})

	require.NoError(t, a.Bind())
	require.NoError(t, b1.Bind())

	require.NoError(t, src.commit())
	assert.Equal(t, []string{"root", "a"}, order)
	assert.True(t, b.IsClosed())
	assert.Equal(t, 1, root.NestedCount())
}

func TestParentUnbindDuringPassExcludesLaterChildren(t *testing.T) {
	src := &fakeSource{}
	var order []string

	var root, p, c1, c2, c2a *Subscription
	root = New(src, nil, func() error {
		order = append(order, "root")
		return root.NotifyNested()
	})
	p = New(src, root, func() error {
		order = append(order, "p")
		return p.NotifyNested()
	})
	c1 = New(src, p, func() error {
		order = append(order, "c1")
		p.Unbind()
		return nil
	})
	c2 = New(src, p, func() error {
		order = append(order, "c2")
		return c2.NotifyNested()
	})
	c2a = New(src, c2, func() error {
		order = append(order, "c2a")
		return nil
	})

	require.NoError(t, c1.Bind())
	require.NoError(t, c2a.Bind())

	require.NoError(t, src.commit())
	assert.Equal(t, []string{"root", "p", "c1"}, order)
	assert.True(t, c2.IsBound())
	assert.False(t, c2.Active())
	assert.False(t, c2a.Active())
	assert.True(t, root.Active())

	order = nil
	require.NoError(t, src.commit())
	assert.Equal(t, []string{"root"}, order)
}

func TestAddNestedOnClosedNode(t *testing.T) {
	s := New(&fakeSource{}, nil, func() error { return nil })
	s.Unbind()

	unsubscribe, err := s.AddNested(func() error { return nil })
	require.NoError(t, err)
	unsubscribe()
	assert.Zero(t, s.NestedCount())

	_, err = s.AddNested(nil)
	assert.Error(t, err)
}
