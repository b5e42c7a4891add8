package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// NewMiddleware returns a dispatch middleware that wraps each call in a
// span. A nil tracer yields a pass-through middleware.
func NewMiddleware(tracer trace.Tracer) dispatch.Middleware {
	if tracer == nil {
		return func(next dispatch.Dispatcher) dispatch.Dispatcher { return next }
	}

	return func(next dispatch.Dispatcher) dispatch.Dispatcher {
		return dispatch.DispatcherFunc(func(ctx context.Context, group string, args dispatch.Args) (any, error) {
			ctx, span := tracer.Start(ctx, SpanDispatch,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String(AttrGroup, group),
					attribute.Int(AttrPositional, args.Len()),
					attribute.StringSlice(AttrKeywords, args.KeywordNames()),
				),
			)
			defer span.End()

			ctx, obs := dispatch.Observe(ctx)
			res, err := next.Dispatch(ctx, group, args)

			span.SetAttributes(attribute.String(AttrOutcome, string(obs.Outcome(err))))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}
			span.SetAttributes(attribute.String(AttrResultType, fmt.Sprintf("%T", res)))
			span.SetStatus(codes.Ok, "")
			return res, nil
		})
	}
}
