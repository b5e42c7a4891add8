package dispatch

import (
	"context"
	"sync"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// observationKey is the context key for the current call's Observation.
const observationKey contextKey = "dispatch_observation"

// Observation records how resolution ended for one dispatch call. Middlewares
// attach one with Observe; dispatchers report into it through
// ReportResolution before invoking the implementation, so an implementation
// error that happens to wrap ErrNoMatch or ErrPredicate (a nested dispatch,
// say) is still labelled an implementation error.
type Observation struct {
	mu       sync.Mutex
	reported bool
	err      error
}

// Observe returns a context carrying an Observation for the next dispatch.
// Middlewares stacked around the same call share one Observation; once a
// resolution has been reported, nested calls get a fresh one.
func Observe(ctx context.Context) (context.Context, *Observation) {
	if o := observationFrom(ctx); o != nil && !o.Reported() {
		return ctx, o
	}
	o := &Observation{}
	return context.WithValue(ctx, observationKey, o), o
}

func observationFrom(ctx context.Context) *Observation {
	if ctx == nil {
		return nil
	}
	o, _ := ctx.Value(observationKey).(*Observation)
	return o
}

// ReportResolution records the resolution error (nil on success) for the
// call observed in ctx. Only the first report counts.
func ReportResolution(ctx context.Context, err error) {
	o := observationFrom(ctx)
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.reported {
		return
	}
	o.reported = true
	o.err = err
}

// Reported reports whether a dispatcher has recorded the resolution.
func (o *Observation) Reported() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reported
}

// Outcome labels the call given the error Dispatch returned. Without a
// report it falls back to Classify.
func (o *Observation) Outcome(err error) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case !o.reported:
		return Classify(err)
	case o.err != nil:
		return Classify(o.err)
	case err != nil:
		return OutcomeImplementationError
	default:
		return OutcomeOK
	}
}
