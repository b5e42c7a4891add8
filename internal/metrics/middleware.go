package metrics

import (
	"context"
	"time"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Middleware counts every call by outcome and observes its duration.
func (s *PromSink) Middleware() dispatch.Middleware {
	return func(next dispatch.Dispatcher) dispatch.Dispatcher {
		return dispatch.DispatcherFunc(func(ctx context.Context, group string, args dispatch.Args) (any, error) {
			ctx, obs := dispatch.Observe(ctx)
			start := time.Now()
			res, err := next.Dispatch(ctx, group, args)
			s.latency.WithLabelValues(group).Observe(time.Since(start).Seconds())
			s.dispatches.WithLabelValues(group, string(obs.Outcome(err))).Inc()
			return res, err
		})
	}
}
