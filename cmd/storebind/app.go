package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/storebind/internal/config"
	"github.com/vango-dev/storebind/internal/errors"
	"github.com/vango-dev/storebind/pkg/bind"
	"github.com/vango-dev/storebind/pkg/devtools"
	"github.com/vango-dev/storebind/pkg/fields"
	"github.com/vango-dev/storebind/pkg/middleware"
	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/store"
)

const actionAddTodo = "ADD_TODO"

// todoReducer appends to the "todos" list. Field writes are handled by
// fields.Reducer around it.
func todoReducer(state, action any) any {
	s, _ := state.(map[string]any)
	a, ok := action.(store.Action)
	if !ok || a.Type != actionAddTodo {
		if s == nil {
			return map[string]any{"todos": []string{}}
		}
		return s
	}

	todos, _ := s["todos"].([]string)
	next := make(map[string]any, len(s))
	for k, v := range s {
		next[k] = v
	}
	next["todos"] = append(append([]string(nil), todos...), a.Payload.(string))
	return next
}

func todos(state any) []string {
	s, _ := state.(map[string]any)
	list, _ := s["todos"].([]string)
	return list
}

// demoApp is a small todo tree: a counter, a list whose items are connected
// as the list grows, and a composer backed by a field.
type demoApp struct {
	out    io.Writer
	logger *slog.Logger

	store    *store.Memory
	provider *bind.Provider

	counter  *bind.Connector
	list     *bind.Connector
	composer *bind.Connector
	items    []*bind.Connector
	item     *bind.Binding
}

// observers builds the provider options for the observability cfg enables.
func observers(cfg *config.Config, reg prometheus.Registerer, in *devtools.Inspector) []bind.ProviderOption {
	var opts []bind.ProviderOption
	if cfg.Tracing.Enabled {
		opts = append(opts, bind.WithObserver(middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName))))
	}
	if cfg.Metrics.Enabled && reg != nil {
		opts = append(opts, bind.WithObserver(middleware.Prometheus(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)))
	}
	if in != nil {
		opts = append(opts, bind.WithObserver(in))
	}
	return opts
}

func newDemoApp(cfg *config.Config, out io.Writer, logger *slog.Logger, opts ...bind.ProviderOption) (*demoApp, error) {
	app := &demoApp{out: out, logger: logger}
	app.store = store.New(fields.Reducer(todoReducer), nil, store.WithLogger(logger))

	opts = append([]bind.ProviderOption{
		bind.WithLogger(logger),
		bind.WithMaxPasses(cfg.Scheduler.MaxPasses),
	}, opts...)
	p, err := bind.NewProvider(app.store, opts...)
	if err != nil {
		return nil, err
	}
	app.provider = p

	counter := bind.New(
		bind.WithName("Counter"),
		bind.WithMapState(selector.FromState(func(state any) (selector.Props, error) {
			return selector.Props{"count": len(todos(state))}, nil
		})),
		bind.WithOnUpdate(app.print),
	)
	list := bind.New(
		bind.WithName("TodoList"),
		bind.WithMapState(selector.FromState(func(state any) (selector.Props, error) {
			return selector.Props{"todos": todos(state)}, nil
		})),
		bind.WithOnUpdate(app.print),
	)
	app.item = bind.New(
		bind.WithName("TodoItem"),
		bind.WithMapState(selector.FromStateAndProps(func(state any, own selector.Props) (selector.Props, error) {
			list := todos(state)
			i, _ := own["index"].(int)
			if i >= len(list) {
				return selector.Props{}, nil
			}
			return selector.Props{"text": list[i]}, nil
		})),
		bind.WithOnUpdate(app.print),
	)
	composer := bind.New(
		bind.WithName("Composer"),
		bind.WithFields(fields.New("Composer", map[string]fields.Field{
			"draft": {Scope: fields.Component, Default: ""},
		})),
		bind.WithMapDispatch(selector.ActionCreators(map[string]selector.ActionCreator{
			"add": func(args ...any) any {
				text, _ := args[0].(string)
				return addTodo(text)
			},
		})),
		bind.WithOnUpdate(app.print),
	)

	if app.counter, err = app.mount(counter, p); err != nil {
		return nil, err
	}
	if app.list, err = list.Connect(p, nil, bind.OnUpdate(app.syncItems)); err != nil {
		return nil, err
	}
	if err := app.list.Mount(); err != nil {
		return nil, err
	}
	if app.composer, err = app.mount(composer, p); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *demoApp) mount(b *bind.Binding, parent bind.Parent, opts ...bind.ConnectOption) (*bind.Connector, error) {
	c, err := b.Connect(parent, nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Mount(); err != nil {
		c.Unmount()
		return nil, err
	}
	return c, nil
}

// syncItems connects one item per todo. It runs inside the list's update,
// so new items are mounted before the list notifies its children.
func (a *demoApp) syncItems(u bind.Update) {
	if u.Err != nil || a.list == nil {
		return
	}
	list, _ := u.Props["todos"].([]string)
	for i := len(a.items); i < len(list); i++ {
		c, err := a.item.Connect(a.list, selector.Props{"index": i})
		if err != nil {
			a.logger.Error("connect item", "index", i, "error", err)
			return
		}
		if err := c.Mount(); err != nil {
			a.logger.Error("mount item", "index", i, "error", err)
			return
		}
		a.items = append(a.items, c)
	}
}

func (a *demoApp) print(u bind.Update) {
	switch {
	case u.Err != nil:
		fmt.Fprintf(a.out, "  %-9s #%-3d %-9s error: %s\n", u.Node, u.NodeID, u.Cause, errors.Compact(u.Err))
	case u.Changed:
		fmt.Fprintf(a.out, "  %-9s #%-3d %-9s %v\n", u.Node, u.NodeID, u.Cause, visible(u.Props))
	}
}

// visible drops function props, which do not print usefully.
func visible(props selector.Props) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch v.(type) {
		case selector.DispatchFunc, selector.BoundAction, fields.SetFunc, map[string]fields.Info:
			continue
		}
		out[k] = v
	}
	return out
}

// step types a draft into the composer and submits it.
func (a *demoApp) step(n int) error {
	props, err := a.composer.Props()
	if err != nil {
		return err
	}
	setDraft := props[fields.SetterName("draft")].(fields.SetFunc)
	if _, err := setDraft(fmt.Sprintf("todo #%d", n)); err != nil {
		return err
	}

	if props, err = a.composer.Props(); err != nil {
		return err
	}
	add := props["add"].(selector.BoundAction)
	_, err = add(props["draft"])
	return err
}

func (a *demoApp) close() {
	for _, c := range a.items {
		c.Unmount()
	}
	a.composer.Unmount()
	a.list.Unmount()
	a.counter.Unmount()
	a.provider.Close()
}

func addTodo(text string) store.Action {
	return store.Action{Type: actionAddTodo, Payload: text}
}
