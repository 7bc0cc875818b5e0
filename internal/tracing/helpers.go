package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DBOperation labels the kind of statement a database span covers.
type DBOperation string

const (
	DBOperationQuery  DBOperation = "query"
	DBOperationUpsert DBOperation = "upsert"
	DBOperationInsert DBOperation = "insert"
	DBOperationUpdate DBOperation = "update"
)

func endFunc(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// StartSpan opens a span for an engine operation. The returned func ends
// the span, recording the error when non-nil:
//
//	ctx, endSpan := tracing.StartSpan(ctx, "ranking.recompute")
//	defer func() { endSpan(err) }()
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, span := otel.Tracer("crewdeck").Start(ctx, name)
	return ctx, endFunc(span)
}

// StartDBSpan opens a client span for one database statement against the
// named table.
func StartDBSpan(ctx context.Context, table string, operation DBOperation) (context.Context, func(error)) {
	name := string(operation)
	if table != "" {
		name = name + " " + table
	}

	ctx, span := otel.Tracer("crewdeck/db").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", string(operation)),
		),
	)
	if table != "" {
		span.SetAttributes(attribute.String("db.sql.table", table))
	}
	return ctx, endFunc(span)
}

// SetAttributes adds attributes to the span in ctx, if any.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
