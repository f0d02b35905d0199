package oteltrace

import (
	"context"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a tracer resolved from the global provider. Spans are dropped
// until Setup (or any other SDK initialisation) installs a real provider.
func New(name string) observability.Tracer {
	if name == "" {
		name = "order-service"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
