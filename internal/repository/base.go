package repository

import (
	"context"
	"time"

	"postboard/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// track starts a repository span and returns a func that records latency and ends it.
func track(ctx context.Context, table, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "repository", operation,
		attribute.String("db.table", table),
		attribute.String("db.operation", operation),
	)
	return ctx, func(err error) {
		observability.DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		endSpan(span, err)
	}
}

func endSpan(span trace.Span, err error) {
	observability.EndSpan(span, err)
}
