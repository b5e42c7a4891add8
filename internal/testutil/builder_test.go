package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

func TestBuilder_CountsEvaluationsInOrder(t *testing.T) {
	reg, counters := NewBuilder(t).KindGroup("g").Build()

	res, err := reg.Dispatch(context.Background(), "g", dispatch.Positional("x"))
	require.NoError(t, err)
	assert.Equal(t, "string", res)

	assert.Equal(t, int64(1), counters["int"].Evaluated.Load())
	assert.Equal(t, int64(1), counters["string"].Evaluated.Load())
	assert.Equal(t, int64(0), counters["float64"].Evaluated.Load())
	assert.Equal(t, int64(1), counters["string"].Invoked.Load())
	assert.Equal(t, int64(0), counters["int"].Invoked.Load())
}

func TestBuilder_DefaultAndFailing(t *testing.T) {
	boom := errors.New("boom")
	reg, counters := NewBuilder(t).
		WithFailing("g", "bool", IsKind[bool], boom).
		WithDefault("g", "fallback", "other").
		Build()

	_, err := reg.Dispatch(context.Background(), "g", dispatch.Positional(true))
	require.ErrorIs(t, err, boom)

	res, err := reg.Dispatch(context.Background(), "g", dispatch.Positional(1))
	require.NoError(t, err)
	assert.Equal(t, "other", res)
	assert.Equal(t, int64(1), counters["fallback"].Invoked.Load())
	assert.True(t, reg.Candidates("g")[1].Default)
}
