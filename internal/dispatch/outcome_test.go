package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// nestedRegistry has an "outer" group whose implementation dispatches into
// the empty "inner" group and returns that failure as its own error.
func nestedRegistry() *dispatch.Registry {
	r := dispatch.NewRegistry()
	r.Register("outer", constant(true), func(ctx context.Context, a dispatch.Args) (any, error) {
		return r.Dispatch(ctx, "inner", a)
	})
	return r
}

func TestObservation_NestedNoMatchIsImplementationError(t *testing.T) {
	r := nestedRegistry()

	ctx, obs := dispatch.Observe(context.Background())
	_, err := r.Dispatch(ctx, "outer", dispatch.Positional(1))

	require.ErrorIs(t, err, dispatch.ErrNoMatch)
	assert.Equal(t, dispatch.OutcomeNoMatch, dispatch.Classify(err))
	assert.Equal(t, dispatch.OutcomeImplementationError, obs.Outcome(err))
}

func TestObservation_ResolutionOutcomes(t *testing.T) {
	r := dispatch.NewRegistry()
	r.Register("g", func(a dispatch.Args) (bool, error) {
		if _, ok := dispatch.Arg[string](a, 0); ok {
			return false, errors.New("bad predicate")
		}
		_, ok := dispatch.Arg[int](a, 0)
		return ok, nil
	}, returns("ok"))

	tests := []struct {
		name string
		args dispatch.Args
		want dispatch.Outcome
	}{
		{"ok", dispatch.Positional(1), dispatch.OutcomeOK},
		{"no match", dispatch.Positional(1.5), dispatch.OutcomeNoMatch},
		{"predicate error", dispatch.Positional("x"), dispatch.OutcomePredicateError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, obs := dispatch.Observe(context.Background())
			_, err := r.Dispatch(ctx, "g", tt.args)
			assert.True(t, obs.Reported())
			assert.Equal(t, tt.want, obs.Outcome(err))
		})
	}
}

func TestObservation_StackedObserversShareOneCall(t *testing.T) {
	ctx, outer := dispatch.Observe(context.Background())
	ctx2, inner := dispatch.Observe(ctx)
	require.Same(t, outer, inner)
	require.Equal(t, ctx, ctx2)

	dispatch.ReportResolution(ctx, nil)
	_, fresh := dispatch.Observe(ctx)
	assert.NotSame(t, outer, fresh)
}

func TestObservation_FirstReportWins(t *testing.T) {
	ctx, obs := dispatch.Observe(context.Background())
	dispatch.ReportResolution(ctx, nil)
	dispatch.ReportResolution(ctx, &dispatch.NoMatchError{Group: "g"})

	assert.Equal(t, dispatch.OutcomeImplementationError, obs.Outcome(errors.New("impl")))
}

func TestObservation_UnreportedFallsBackToClassify(t *testing.T) {
	_, obs := dispatch.Observe(context.Background())
	assert.False(t, obs.Reported())
	assert.Equal(t, dispatch.OutcomeNoMatch, obs.Outcome(&dispatch.NoMatchError{Group: "g"}))
	assert.Equal(t, dispatch.OutcomeOK, obs.Outcome(nil))
}

func TestReportResolution_WithoutObservationIsNoop(t *testing.T) {
	dispatch.ReportResolution(context.Background(), errors.New("ignored"))
}
