package cmd

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zjrosen/conddispatch/internal/config"
	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/log"
	"github.com/zjrosen/conddispatch/internal/metrics"
	"github.com/zjrosen/conddispatch/internal/pubsub"
	"github.com/zjrosen/conddispatch/internal/rescache"
	"github.com/zjrosen/conddispatch/internal/shapes"
	"github.com/zjrosen/conddispatch/internal/tracing"
)

// engine is the dispatch stack a command runs calls through:
// tracing -> metrics -> resolution cache -> registry.
type engine struct {
	reg      *dispatch.Registry
	cache    *rescache.Cache
	sink     *metrics.PromSink
	gatherer prometheus.Gatherer
	tracer   *tracing.Provider
	stop     context.CancelFunc

	dispatch.Dispatcher
}

func newEngine(cfg config.Config) (*engine, error) {
	promReg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(promReg)
	if err != nil {
		return nil, err
	}

	tc := cfg.Tracing
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	tp, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, err
	}

	reg := dispatch.NewRegistry()
	ctx, stop := context.WithCancel(context.Background())
	go pubsub.Listen(ctx, reg.Subscribe(ctx), func(ev pubsub.Event[dispatch.Change]) {
		log.Debug(log.CatRegistry, "Registry changed", "event", ev.Type, "group", ev.Payload.Group,
			"candidate", ev.Payload.Label, "version", ev.Payload.Version)
	})
	shapes.Register(reg)

	opts := append(cfg.Cache.Options(), rescache.WithStats(sink))
	cache := rescache.New(reg, opts...)

	e := &engine{
		reg:      reg,
		cache:    cache,
		sink:     sink,
		gatherer: promReg,
		tracer:   tp,
		stop:     stop,
	}
	e.Dispatcher = dispatch.Chain(cache,
		tracing.NewMiddleware(tp.Tracer()),
		sink.Middleware(),
	)
	log.Debug(log.CatCLI, "Engine ready", "groups", reg.Groups(), "cache", cache.Enabled(), "tracing", tp.Enabled())
	return e, nil
}

func (e *engine) Close(ctx context.Context) error {
	e.stop()
	e.reg.Close()
	return errors.Join(e.cache.Flush(), e.tracer.Shutdown(ctx))
}
