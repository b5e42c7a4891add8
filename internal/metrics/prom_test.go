package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/rescache"
)

func isInt(a dispatch.Args) bool {
	_, ok := dispatch.Arg[int](a, 0)
	return ok
}

func TestPromSink_RecordsCacheActivity(t *testing.T) {
	sink, err := NewPromSink(prometheus.NewRegistry())
	require.NoError(t, err)

	reg := dispatch.NewRegistry()
	reg.Register("g", dispatch.When(isInt), func(context.Context, dispatch.Args) (any, error) { return "int", nil })
	cache := rescache.New(reg, rescache.WithStats(sink))

	_, err = cache.Dispatch(context.Background(), "g", dispatch.Positional(1))
	require.NoError(t, err)
	_, err = cache.Dispatch(context.Background(), "g", dispatch.Positional(2))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.misses.WithLabelValues("g")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.hits.WithLabelValues("g")))

	reg.RegisterDefault("g", func(context.Context, dispatch.Args) (any, error) { return "other", nil })

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.invalidations.WithLabelValues("g")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.evicted.WithLabelValues("g")))
}

func TestPromSink_MiddlewareCountsOutcomes(t *testing.T) {
	sink, err := NewPromSink(prometheus.NewRegistry())
	require.NoError(t, err)

	reg := dispatch.NewRegistry()
	reg.Register("g", dispatch.When(isInt), func(_ context.Context, a dispatch.Args) (any, error) {
		if n, _ := dispatch.Arg[int](a, 0); n < 0 {
			return nil, errors.New("negative")
		}
		return "ok", nil
	})
	d := dispatch.Chain(reg, sink.Middleware())

	_, _ = d.Dispatch(context.Background(), "g", dispatch.Positional(1))
	_, _ = d.Dispatch(context.Background(), "g", dispatch.Positional(2))
	_, _ = d.Dispatch(context.Background(), "g", dispatch.Positional(-1))
	_, _ = d.Dispatch(context.Background(), "g", dispatch.Positional("x"))

	expected := `
# HELP conddispatch_dispatch_total Dispatch calls by group and outcome.
# TYPE conddispatch_dispatch_total counter
conddispatch_dispatch_total{group="g",outcome="implementation_error"} 1
conddispatch_dispatch_total{group="g",outcome="no_match"} 1
conddispatch_dispatch_total{group="g",outcome="ok"} 2
`
	require.NoError(t, testutil.CollectAndCompare(sink.dispatches, strings.NewReader(expected)))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.latency))
}

func TestPromSink_MiddlewareLabelsNestedNoMatchAsImplementationError(t *testing.T) {
	sink, err := NewPromSink(prometheus.NewRegistry())
	require.NoError(t, err)

	reg := dispatch.NewRegistry()
	var d dispatch.Dispatcher
	reg.Register("outer", dispatch.When(isInt), func(ctx context.Context, a dispatch.Args) (any, error) {
		return d.Dispatch(ctx, "inner", a)
	})
	d = dispatch.Chain(rescache.New(reg), sink.Middleware())

	_, err = d.Dispatch(context.Background(), "outer", dispatch.Positional(1))
	require.ErrorIs(t, err, dispatch.ErrNoMatch)

	expected := `
# HELP conddispatch_dispatch_total Dispatch calls by group and outcome.
# TYPE conddispatch_dispatch_total counter
conddispatch_dispatch_total{group="inner",outcome="no_match"} 1
conddispatch_dispatch_total{group="outer",outcome="implementation_error"} 1
`
	require.NoError(t, testutil.CollectAndCompare(sink.dispatches, strings.NewReader(expected)))
}

func TestNewPromSink_ReusesRegisteredCollectors(t *testing.T) {
	promReg := prometheus.NewRegistry()
	first, err := NewPromSink(promReg)
	require.NoError(t, err)
	second, err := NewPromSink(promReg)
	require.NoError(t, err)

	first.CacheHit("g")
	second.CacheHit("g")

	assert.Same(t, first.hits, second.hits)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.hits.WithLabelValues("g")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	sink, err := NewPromSink(promReg)
	require.NoError(t, err)
	sink.CacheMiss("area")

	srv := httptest.NewServer(Handler(promReg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `conddispatch_cache_misses_total{group="area"} 1`)
}
