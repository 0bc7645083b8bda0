package middleware

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/storebind/pkg/bind"
	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

func appendReducer(state, action any) any {
	prev, _ := state.(string)
	if a, ok := action.(store.Action); ok && a.Type == "APPEND" {
		return prev + a.Payload.(string)
	}
	return prev
}

func newTree(t *testing.T, observer bind.Observer) (*store.Memory, *bind.Provider) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(appendReducer, "", store.WithLogger(logger))
	p, err := bind.NewProvider(st, bind.WithLogger(logger), bind.WithObserver(observer))
	require.NoError(t, err)
	return st, p
}

// failOn builds a node that fails once the state equals bad.
func failOn(bad string) *bind.Binding {
	return bind.New(bind.WithName("Echo"), bind.WithMapState(selector.FromState(func(state any) (selector.Props, error) {
		if state == bad {
			return nil, nil
		}
		return selector.Props{"s": state}, nil
	})))
}

func mountNode(t *testing.T, b *bind.Binding, p bind.Parent) *bind.Connector {
	t.Helper()
	c, err := b.Connect(p, nil)
	require.NoError(t, err)
	require.NoError(t, c.Mount())
	return c
}

func staticNode() *bind.Binding {
	return bind.New(bind.WithName("Static"), bind.WithMapState(selector.FromState(func(any) (selector.Props, error) {
		return selector.Props{}, nil
	})))
}
