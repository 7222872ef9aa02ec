package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/felixgeelhaar/v2x-go/application"
	"github.com/felixgeelhaar/v2x-go/domain/config"
	"github.com/felixgeelhaar/v2x-go/domain/event"
	infraconfig "github.com/felixgeelhaar/v2x-go/infrastructure/config"
	infraevent "github.com/felixgeelhaar/v2x-go/infrastructure/event"
	"github.com/felixgeelhaar/v2x-go/infrastructure/logging"
	"github.com/felixgeelhaar/v2x-go/infrastructure/simulator"
	storebadger "github.com/felixgeelhaar/v2x-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/v2x-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/v2x-go/infrastructure/telemetry"
)

// runOptions holds options for the run command.
type runOptions struct {
	configPath string
	maxTicks   int
	block      string
	blockTick  int
	blockAt    string
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the four-way intersection scenario",
		Long: `Run the built-in four-way intersection crossing with the given
configuration. Four vehicles approach an unsignalized junction with
staggered arrivals; the arbiter grants the conflict zone first come,
first served, and the safety controllers keep gaps and react to any
injected blockage.

Examples:
  # Run with default tunables
  v2x run

  # Run with a configuration file
  v2x run -c scenario.yaml

  # Inject a lane blockage on the east approach at tick 2
  v2x run --block lane --block-at east_in_0 --block-tick 2

  # Inject a path blockage on the north approach
  v2x run --block path --block-at north_in --block-tick 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenario(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().IntVar(&opts.maxTicks, "max-ticks", 0, "Tick bound for the run (0 = default)")
	cmd.Flags().StringVar(&opts.block, "block", "", "Blockage to inject: lane or path")
	cmd.Flags().StringVar(&opts.blockAt, "block-at", "", "Lane or edge the blockage affects (empty = everywhere)")
	cmd.Flags().IntVar(&opts.blockTick, "block-tick", 2, "Tick at which the blockage is injected")

	return cmd
}

// runScenario wires the engine and drives the demo run.
func (a *App) runScenario(ctx context.Context, opts *runOptions) error {
	cfg, err := a.loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	var metrics *telemetry.MetricsProvider
	if cfg.Telemetry.Enabled {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("metrics exporter: %w", err)
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		otel.SetMeterProvider(provider)
		defer func() { _ = provider.Shutdown(ctx) }()

		mc := telemetry.DefaultMetricsConfig()
		if cfg.Telemetry.MeterName != "" {
			mc.MeterName = cfg.Telemetry.MeterName
		}
		metrics = telemetry.NewMetricsProvider(mc)
		if metrics.Error() != nil {
			return fmt.Errorf("metrics provider: %w", metrics.Error())
		}
	}

	store, closeStore, err := a.openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := infraevent.NewPublisher(store, infraevent.WithBatchSize(64))
	defer func() { _ = publisher.Close() }()

	client := simulator.NewResilientClient(demoScenario(), simulator.DefaultResilientConfig())
	defer func() { _ = client.Close() }()

	engine, err := application.NewEngine(application.EngineConfig{
		Client:     client,
		Config:     cfg,
		Publisher:  publisher,
		Metrics:    metrics,
		MaxTicks:   opts.maxTicks,
		BeforeTick: blockageSchedule(opts),
	})
	if err != nil {
		return fmt.Errorf("engine setup: %w", err)
	}

	sum, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", sum.RunID, err)
	}

	fmt.Fprintf(a.stdout, "Run %s completed after %d ticks\n", sum.RunID, sum.Ticks)
	fmt.Fprintf(a.stdout, "Observed payload sizes: %d..%d bytes\n\n", sum.MinPayload, sum.MaxPayload)
	fmt.Fprint(a.stdout, sum.OverheadReport().Render())

	record, err := application.NewReplay(store).Reconstruct(ctx, sum.RunID)
	if err != nil {
		return fmt.Errorf("replay %s: %w", sum.RunID, err)
	}
	fmt.Fprintf(a.stdout, "\nEvent stream:\n")
	for _, t := range sortedEventTypes(record.Counts) {
		fmt.Fprintf(a.stdout, "  %-20s %d\n", t, record.Counts[t])
	}

	return nil
}

// loadConfig reads the configuration file, or returns the defaults.
func (a *App) loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := infraconfig.NewLoader().LoadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return *cfg, nil
}

// openStore builds the configured event store backend.
func (a *App) openStore(cfg config.StoreConfig) (event.Store, func(), error) {
	switch cfg.Backend {
	case "badger":
		store, err := storebadger.NewEventStore(
			storebadger.DefaultConfig(),
			storebadger.WithDir(cfg.Dir),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.NewEventStore(), func() {}, nil
	}
}

// blockageSchedule builds the injection hook from the run options.
func blockageSchedule(opts *runOptions) func(ctx context.Context, engine *application.Engine, tick int) {
	var blockage event.Blockage
	switch opts.block {
	case "lane":
		blockage = event.LaneBlocked{Lane: opts.blockAt}
	case "path":
		blockage = event.PathBlocked{Edge: opts.blockAt}
	default:
		return nil
	}

	return func(ctx context.Context, engine *application.Engine, tick int) {
		if tick == opts.blockTick {
			engine.Inject(ctx, blockage)
		}
	}
}

// sortedEventTypes returns event types in stable order for printing.
func sortedEventTypes(counts map[event.Type]int) []event.Type {
	types := make([]event.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
