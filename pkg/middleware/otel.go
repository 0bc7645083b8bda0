package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/storebind/pkg/bind"
	"github.com/vango-dev/storebind/pkg/selector"
)

// Default tracer name for bound trees.
const defaultTracerName = "storebind"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "storebind").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// Attributes are added to every pass span.
	Attributes []attribute.KeyValue

	// UpdateEvents records one span event per node recompute.
	// Enabled by default.
	UpdateEvents bool

	// Filter decides which updates are recorded. If nil, all are.
	Filter func(u bind.Update) bool
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithAttributes adds attributes to every pass span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithUpdateEvents enables/disables per-recompute span events.
func WithUpdateEvents(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.UpdateEvents = enabled
	}
}

// WithUpdateFilter sets a filter for recorded updates.
func WithUpdateFilter(filter func(u bind.Update) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		UpdateEvents: true,
	}
}

// Tracing is a bind.Observer emitting OpenTelemetry spans.
type Tracing struct {
	bind.NopObserver

	config OTelConfig
	tracer trace.Tracer
}

var _ bind.Observer = (*Tracing)(nil)

// OpenTelemetry creates an observer that traces every notify pass.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is set
// with WithTracerProvider. Configure it in main() before dispatching:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	t := &Tracing{config: config}
	if config.TracerProvider != nil {
		t.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		t.tracer = otel.Tracer(config.TracerName)
	}
	return t
}

// ObservePass runs next inside a "storebind.pass" span.
func (t *Tracing) ObservePass(ctx context.Context, next func(context.Context) error) error {
	spanCtx, span := t.tracer.Start(ctx, "storebind.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.config.Attributes...),
	)
	defer span.End()

	err := next(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// ObserveUpdate adds a span event to the pass span in ctx, if any.
func (t *Tracing) ObserveUpdate(ctx context.Context, u bind.Update) {
	if !t.config.UpdateEvents {
		return
	}
	if t.config.Filter != nil && !t.config.Filter(u) {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("storebind.node", u.Node),
		attribute.Int64("storebind.node_id", int64(u.NodeID)),
		attribute.String("storebind.cause", u.Cause.String()),
		attribute.Bool("storebind.changed", u.Changed),
	}
	if u.Err != nil {
		var derr *selector.DerivationResultError
		if errors.As(u.Err, &derr) {
			attrs = append(attrs, attribute.String("storebind.stage", string(derr.Stage)))
		}
		span.RecordError(u.Err, trace.WithAttributes(attrs...))
		return
	}
	span.AddEvent("storebind.update", trace.WithAttributes(attrs...))
}
