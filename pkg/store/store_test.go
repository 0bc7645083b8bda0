package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringBuilder(state, action any) any {
	prev, _ := state.(string)
	if a, ok := action.(Action); ok && a.Type == "APPEND" {
		return prev + a.Payload.(string)
	}
	return prev
}

func appendAction(s string) Action {
	return Action{Type: "APPEND", Payload: s}
}

func TestMemoryInitialisesThroughReducer(t *testing.T) {
	st := New(stringBuilder, nil)
	assert.Equal(t, "", st.State())

	var _ Store = st
}

func TestMemoryDispatchNotifiesAfterCommit(t *testing.T) {
	st := New(stringBuilder, "")
	var seen []any

	st.Subscribe(func() error {
		seen = append(seen, st.State())
		return nil
	})

	action, err := st.Dispatch(appendAction("a"))
	require.NoError(t, err)
	assert.Equal(t, appendAction("a"), action)

	_, err = st.Dispatch(appendAction("b"))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "ab"}, seen)
}

func TestMemoryUnsubscribeIsIdempotent(t *testing.T) {
	st := New(stringBuilder, "")
	calls := 0

	unsubscribe := st.Subscribe(func() error {
		calls++
		return nil
	})
	assert.Equal(t, 1, st.ListenerCount())

	unsubscribe()
	unsubscribe()
	assert.Zero(t, st.ListenerCount())

	_, err := st.Dispatch(appendAction("a"))
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestMemoryToleratesUnsubscribeInsideListener(t *testing.T) {
	st := New(stringBuilder, "")
	var calls []string
	var unsubscribeB func()

	st.Subscribe(func() error {
		calls = append(calls, "a")
		unsubscribeB()
		return nil
	})
	unsubscribeB = st.Subscribe(func() error {
		calls = append(calls, "b")
		return nil
	})

	_, err := st.Dispatch(appendAction("x"))
	require.NoError(t, err)
	_, err = st.Dispatch(appendAction("y"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "a"}, calls)
}

func TestMemoryReturnsListenerErrors(t *testing.T) {
	st := New(stringBuilder, "")
	boom := errors.New("boom")
	st.Subscribe(func() error { return boom })

	_, err := st.Dispatch(appendAction("a"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "a", st.State(), "the commit itself is kept")
}

func TestMemoryRejectsDispatchFromReducer(t *testing.T) {
	var st *Memory
	var inner error
	st = New(func(state, action any) any {
		if _, ok := action.(Action); ok {
			_, inner = st.Dispatch(appendAction("nested"))
		}
		return state
	}, "")

	_, err := st.Dispatch(appendAction("a"))
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrReducerDispatch)

	// the guard is released afterwards
	_, err = st.Dispatch(appendAction("b"))
	assert.NoError(t, err)
}

func TestMemoryIgnoresNilListener(t *testing.T) {
	st := New(stringBuilder, "")
	unsubscribe := st.Subscribe(nil)
	unsubscribe()
	assert.Zero(t, st.ListenerCount())
}

func TestMemoryReplaceReducer(t *testing.T) {
	st := New(stringBuilder, "x")
	notified := false
	st.Subscribe(func() error {
		notified = true
		return nil
	})

	st.ReplaceReducer(func(state, action any) any {
		if _, ok := action.(InitAction); ok {
			return "reset"
		}
		return state
	})

	assert.Equal(t, "reset", st.State())
	assert.False(t, notified)
}

func TestNilReducerKeepsState(t *testing.T) {
	st := New(nil, 42)
	_, err := st.Dispatch("anything")
	require.NoError(t, err)
	assert.Equal(t, 42, st.State())
}
