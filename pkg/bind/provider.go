package bind

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/store"
	"github.com/vango-dev/storebind/pkg/subscription"
)

// Parent is what a Connector is attached under: a *Provider, another
// *Connector, or Detached(store).
type Parent interface {
	// Store returns the store the subtree is bound to.
	Store() store.Store

	// Subscription returns the nearest subscribing ancestor, or nil when
	// children must subscribe to the store directly.
	Subscription() *subscription.Subscription

	environment() *env
}

// env is shared by every Connector under one Provider.
type env struct {
	store    store.Store
	dispatch selector.DispatchFunc
	logger   *slog.Logger
	observer Observer

	// pass is the context of the notify pass in progress.
	pass context.Context
}

func (e *env) context() context.Context {
	if e.pass != nil {
		return e.pass
	}
	return context.Background()
}

// ProviderOption configures a Provider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	batch     subscription.BatchFunc
	logger    *slog.Logger
	observer  Observer
	maxPasses int
}

// WithBatch sets the host's batching primitive. Each flush runs inside one
// call of fn.
func WithBatch(fn subscription.BatchFunc) ProviderOption {
	return func(c *providerConfig) {
		c.batch = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(c *providerConfig) {
		c.logger = logger
	}
}

// WithObserver attaches observers. Several calls chain.
func WithObserver(o Observer) ProviderOption {
	return func(c *providerConfig) {
		if c.observer == nil {
			c.observer = o
			return
		}
		c.observer = Observers(c.observer, o)
	}
}

// WithMaxPasses bounds how many passes one flush may run when commits keep
// arriving from inside it.
func WithMaxPasses(n int) ProviderOption {
	return func(c *providerConfig) {
		c.maxPasses = n
	}
}

func newEnv(st store.Store, cfg providerConfig) *env {
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.observer
	if observer == nil {
		observer = NopObserver{}
	}
	return &env{
		store:    st,
		dispatch: st.Dispatch,
		logger:   logger.With("component", "bind"),
		observer: observer,
	}
}

// Provider is the root of a notification tree. It holds the only listener
// registered with the store.
type Provider struct {
	env       *env
	root      *subscription.Subscription
	scheduler *subscription.Scheduler
	passes    uint64
}

// NewProvider binds a new root to st.
func NewProvider(st store.Store, opts ...ProviderOption) (*Provider, error) {
	if st == nil {
		return nil, storeNotFound("Provider")
	}

	var cfg providerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Provider{env: newEnv(st, cfg)}
	var schedOpts []subscription.SchedulerOption
	if cfg.maxPasses > 0 {
		schedOpts = append(schedOpts, subscription.WithMaxPasses(cfg.maxPasses))
	}
	p.scheduler = subscription.NewScheduler(cfg.batch, schedOpts...)
	p.root = subscription.New(st, nil, p.handleChange)
	if err := p.root.Bind(); err != nil {
		return nil, err
	}
	return p, nil
}

// Store returns the bound store.
func (p *Provider) Store() store.Store {
	if p == nil {
		return nil
	}
	return p.env.store
}

// Subscription returns the root subscription.
func (p *Provider) Subscription() *subscription.Subscription {
	if p == nil {
		return nil
	}
	return p.root
}

func (p *Provider) environment() *env {
	if p == nil {
		return nil
	}
	return p.env
}

// Close detaches the tree from the store. Connectors below it stop receiving
// notifications.
func (p *Provider) Close() {
	p.root.Unbind()
}

// Passes returns how many notify passes have run.
func (p *Provider) Passes() uint64 {
	return p.passes
}

func (p *Provider) handleChange() error {
	return p.scheduler.Flush(p.pass)
}

// pass notifies the whole tree once, top-down.
func (p *Provider) pass() error {
	p.passes++
	start := time.Now()
	err := p.env.observer.ObservePass(context.Background(), func(ctx context.Context) error {
		prev := p.env.pass
		p.env.pass = ctx
		defer func() { p.env.pass = prev }()
		return p.root.NotifyNested()
	})
	if err != nil {
		p.env.logger.Debug("notify pass failed", "pass", p.passes, "duration", time.Since(start), "error", err)
		return err
	}
	p.env.logger.Debug("notify pass", "pass", p.passes, "duration", time.Since(start))
	return nil
}

type detached struct {
	env *env
}

// Detached is a Parent for a node bound straight to st, bypassing any
// Provider. Its Connector subscribes to the store itself.
func Detached(st store.Store, opts ...ProviderOption) Parent {
	if st == nil {
		return detached{}
	}
	var cfg providerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return detached{env: newEnv(st, cfg)}
}

func (d detached) Store() store.Store {
	if d.env == nil {
		return nil
	}
	return d.env.store
}

func (d detached) Subscription() *subscription.Subscription { return nil }

func (d detached) environment() *env { return d.env }
