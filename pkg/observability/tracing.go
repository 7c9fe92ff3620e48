package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the hconf tracer of the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Span is a started trace span. Attributes set on it are buffered and
// attached when the span ends.
type Span struct {
	inner   trace.Span
	started time.Time
	pending []attribute.KeyValue
}

// NewSpan starts a span called name as a child of any span in ctx.
func NewSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, s := Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Span{inner: s, started: time.Now()}
}

// SetAttribute buffers key=value for the span.
func (s *Span) SetAttribute(key string, value interface{}) {
	s.pending = append(s.pending, toAttribute(key, value))
}

// AddEvent records a named event on the span.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.inner.AddEvent(name, trace.WithAttributes(attrs...))
}

// Fail records err on the span and sets its status to Error.
func (s *Span) Fail(err error) {
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}

// Duration is the time elapsed since the span started.
func (s *Span) Duration() time.Duration {
	return time.Since(s.started)
}

// End attaches the buffered attributes and ends the span.
func (s *Span) End() {
	s.inner.SetAttributes(s.pending...)
	s.inner.End()
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	}
	return k.String(fmt.Sprint(value))
}

// StageTracer names spans "<component>.<stage>" and tags them with both parts.
type StageTracer struct {
	component string
}

// NewStageTracer returns a StageTracer for component.
func NewStageTracer(component string) *StageTracer {
	return &StageTracer{component: component}
}

// StartSpan starts the span of one stage.
func (st *StageTracer) StartSpan(ctx context.Context, stage string) (context.Context, *Span) {
	return NewSpan(ctx, st.component+"."+stage,
		attribute.String("hconf.component", st.component),
		attribute.String("hconf.stage", stage),
	)
}

// Trace runs fn inside a stage span. The span ends with status Ok, or with
// the error fn returned.
func (st *StageTracer) Trace(ctx context.Context, stage string, fn func(ctx context.Context, span *Span) error) error {
	ctx, span := st.StartSpan(ctx, stage)
	defer span.End()

	err := fn(ctx, span)
	if err != nil {
		span.Fail(err)
	} else {
		span.inner.SetStatus(codes.Ok, "")
	}
	return err
}
