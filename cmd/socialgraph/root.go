package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/socialgraph/cmd/socialgraph/internal"
	"github.com/zero-day-ai/socialgraph/internal/config"
	"github.com/zero-day-ai/socialgraph/internal/observability"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const telemetryShutdownTimeout = 5 * time.Second

// appState is what PersistentPreRunE prepares for every command.
type appState struct {
	cfg            *config.Config
	logger         *slog.Logger
	runID          string
	tracerProvider *sdktrace.TracerProvider
	meterProvider  metric.MeterProvider
}

var app *appState

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "socialgraph",
		Short: "socialgraph - manage users and friendships in Neo4j",
		Long: `socialgraph stores users and directed FRIENDS_WITH relationships in a
Neo4j graph database. Every batch command reports one result per input
and never stops on a failing item.

Connection settings come from ~/.socialgraph/config.yaml, SOCIALGRAPH_*
or NEO4J_* environment variables, and the --uri, --username and
--database flags, in increasing order of precedence.`,
		PersistentPreRunE: setupApp,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newFriendsCmd())

	return rootCmd
}

// Execute runs the root command with signal handling and flushes telemetry
// before returning, whether or not the command failed.
func Execute(ctx context.Context, rootCmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdownApp(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// setupApp loads configuration and initializes logging, tracing and metrics.
func setupApp(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	// version and help work without any configuration
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, runID := observability.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx := cmd.Context()
	tp, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}
	mp, err := observability.InitMetrics(ctx, cfg.Metrics, cmd.ErrOrStderr())
	if err != nil {
		_ = observability.ShutdownTracing(ctx, tp)
		return internal.WrapError(internal.ExitConfigError, "failed to initialize metrics", err)
	}

	app = &appState{
		cfg:            cfg,
		logger:         logger,
		runID:          runID,
		tracerProvider: tp,
		meterProvider:  mp,
	}

	logger.DebugContext(ctx, "configuration loaded",
		"command", cmd.CommandPath(),
		"endpoint", cfg.Graph.Endpoint(),
		"database", cfg.Graph.Database,
		"tracing", cfg.Tracing.Enabled,
		"metrics", cfg.Metrics.Enabled,
	)
	return nil
}

// loadConfig reads the config file, then applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *GlobalFlags) (*config.Config, error) {
	loader := config.NewConfigLoader(config.NewValidator())

	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigFile != "" {
		cfg, err = loader.Load(flags.ConfigFile)
	} else {
		cfg, err = loader.LoadWithDefaults(config.DefaultConfigPath())
	}
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("uri") {
		cfg.Graph.URI = flags.URI
	}
	if pf.Changed("username") {
		cfg.Graph.Username = flags.Username
	}
	if pf.Changed("database") {
		cfg.Graph.Database = flags.Database
	}
	if pf.Changed("log-format") {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.IsVerbose() {
		cfg.Logging.Level = "debug"
	} else if flags.IsQuiet() {
		cfg.Logging.Level = "error"
	}

	if err := cfg.Graph.Validate(); err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "invalid graph configuration", err)
	}
	return cfg, nil
}

// shutdownApp flushes pending spans and metrics.
func shutdownApp() error {
	if app == nil {
		return nil
	}
	state := app
	app = nil

	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	return errors.Join(
		observability.ShutdownTracing(ctx, state.tracerProvider),
		observability.ShutdownMetrics(ctx, state.meterProvider),
	)
}
