package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/conddispatch/internal/dispatch"
	"github.com/zjrosen/conddispatch/internal/log"
	"github.com/zjrosen/conddispatch/internal/metrics"
	"github.com/zjrosen/conddispatch/internal/presentation"
	"github.com/zjrosen/conddispatch/internal/shapes"
	"github.com/zjrosen/conddispatch/internal/watcher"
)

type runOptions struct {
	watch       bool
	json        bool
	metricsAddr string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <calls.yaml>",
		Short: "Dispatch every call listed in a YAML file",
		Long: `Dispatch every call listed in a YAML file through the cached engine and print the results.

The file is a list of calls:

  - group: area
    shape: circle
    dims: [2]
  - group: perimeter
    shape: triangle
    dims: [3, 4, 5]
  - group: perimeter
    args: ["hexagon"]

With --watch the file is re-run whenever it changes and only the lines that
differ from the previous run are printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.metricsAddr == "" {
				opts.metricsAddr = a.cfg.Metrics.Addr
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run when the file changes")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, path string, opts runOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	eng, err := newEngine(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close(context.Background()) }()

	if opts.metricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, opts.metricsAddr, eng.gatherer); err != nil {
				log.ErrorErr(log.CatCLI, "Metrics server failed", err, "addr", opts.metricsAddr)
			}
		}()
	}

	f := presentation.NewFormatter(out)
	results, err := runCalls(ctx, eng, path)
	if err != nil {
		return err
	}
	if opts.json {
		err = f.FormatResults(results)
	} else {
		err = f.RenderResults(results)
	}
	if err != nil || !opts.watch {
		return err
	}

	return watchCalls(ctx, eng, f, path, presentation.PlainResults(results))
}

// runCalls loads path and dispatches each call in order. Dispatch failures
// are reported in the results; only an unreadable file is an error.
func runCalls(ctx context.Context, eng *engine, path string) ([]presentation.ResultDTO, error) {
	calls, err := shapes.LoadCalls(path)
	if err != nil {
		return nil, err
	}

	results := make([]presentation.ResultDTO, 0, len(calls))
	for i, c := range calls {
		args, err := c.DispatchArgs()
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i+1, err)
		}
		callCtx, obs := dispatch.Observe(ctx)
		v, err := eng.Dispatch(callCtx, c.Group, args)
		results = append(results, presentation.NewResult(i+1, c.Group, args, v, err).WithOutcome(obs.Outcome(err)))
	}
	log.Debug(log.CatCLI, "Ran calls", "path", path, "count", len(results), "cached", eng.cache.Len())
	return results, nil
}

func watchCalls(ctx context.Context, eng *engine, f *presentation.Formatter, path, prev string) error {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			results, err := runCalls(ctx, eng, path)
			if err != nil {
				log.ErrorErr(log.CatWatcher, "Re-run failed", err, "path", path)
				_ = f.RenderHeading(fmt.Sprintf("%s %v", time.Now().Format(time.TimeOnly), err))
				continue
			}
			cur := presentation.PlainResults(results)
			_ = f.RenderHeading(fmt.Sprintf("%s re-ran %s", time.Now().Format(time.TimeOnly), path))
			if err := f.RenderDiff(presentation.DiffLines(prev, cur)); err != nil {
				return err
			}
			prev = cur
		}
	}
}
