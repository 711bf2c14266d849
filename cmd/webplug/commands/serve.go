package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/webplug/pkg/bridge"
	"github.com/justyntemme/webplug/pkg/editor"
	"github.com/justyntemme/webplug/pkg/framework/debug"
	"github.com/justyntemme/webplug/pkg/framework/param"
	"github.com/justyntemme/webplug/pkg/framework/state"
)

var (
	serveAddr     string
	autosaveEvery time.Duration
	undoHistory   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web GUI and run the message bridge",
	Long: `Serve the web GUI and run the message bridge until interrupted.

Parameter values are restored from state.path on start and saved on exit.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&autosaveEvery, "autosave", 30*time.Second, "state autosave interval, 0 to disable")
	serveCmd.Flags().IntVar(&undoHistory, "undo-history", 100, "number of undoable edits kept")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := globalConfig
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return err
	}
	host := param.NewHost(reg, undoHistory)
	states := state.NewManager(reg)
	stampState(states, cfg.Plugin.Info())
	if cfg.State.Path != "" {
		if err := states.LoadFile(cfg.State.Path); err != nil {
			logger.Warn("state not restored: %v", err)
		}
	}

	opts, err := editor.OptionsFromConfig(cfg.Editor)
	if err != nil {
		return err
	}
	opts.Plugin = cfg.Plugin.Info()
	opts.Registry = reg
	opts.Logger = logger.Child("editor")
	ed, err := editor.New(opts)
	if err != nil {
		return err
	}
	logger.Info("editor for %s", opts.Plugin)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())
	profiler := debug.NewProfiler(1000)

	bridgeLog := logger.Child("bridge")
	handler := &demo{
		host:      host,
		registry:  reg,
		states:    states,
		statePath: cfg.State.Path,
		log:       bridgeLog,
	}
	b, err := bridge.New(bridge.Config{
		Parameters:      bridge.NewRegistryParameters(reg, host),
		Transport:       ed,
		Handler:         handler.handle,
		InboundCapacity: cfg.Bridge.InboundCapacity,
		OutboundHint:    cfg.Bridge.OutboundHint,
		Logger:          bridgeLog,
		Meter:           provider.Meter(bridge.MeterName),
		Profiler:        profiler,
	})
	if err != nil {
		return err
	}
	handler.bridge = b
	ed.Attach(b)
	echoHostChanges(host, b, bridgeLog)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ed.Run(gctx, cfg.Server.Addr)
	})
	if cfg.State.Path != "" && autosaveEvery > 0 {
		g.Go(func() error {
			autosave(gctx, states, cfg.State.Path, autosaveEvery)
			return nil
		})
	}
	runErr := g.Wait()

	if cfg.State.Path != "" {
		if err := states.SaveFile(cfg.State.Path); err != nil {
			logger.Error("save state: %v", err)
		} else {
			logger.Info("state saved to %s", cfg.State.Path)
		}
	}
	logger.Debug("%s", profiler.Report())
	reportMetrics(reader)
	return runErr
}

func autosave(ctx context.Context, states *state.Manager, path string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := states.SaveFile(path); err != nil {
				logger.Warn("autosave: %v", err)
			}
		}
	}
}

// reportMetrics logs the bridge counters collected during the session.
func reportMetrics(reader sdkmetric.Reader) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		logger.Debug("collect metrics: %v", err)
		return
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				label := m.Name
				if reason, ok := dp.Attributes.Value("reason"); ok {
					label = fmt.Sprintf("%s{reason=%s}", m.Name, reason.AsString())
				}
				logger.Info("%s = %d", label, dp.Value)
			}
		}
	}
}
