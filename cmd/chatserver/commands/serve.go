package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/internal/server"
	"github.com/objectiveSquid/Chat-site/internal/telemetry"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/objectiveSquid/Chat-site/pkg/metrics"
	"github.com/objectiveSquid/Chat-site/pkg/metrics/prometheus"
	"github.com/objectiveSquid/Chat-site/pkg/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	Long: `Start the chat server with the specified configuration.

The server accepts TCP connections, authenticates each client by its
account token, and serves chat requests until stopped. Both peers must
load identical shared packet settings or every frame misparses.

Running chatserver without a subcommand does the same thing.

Examples:
  # Default config files from the working directory
  chatserver serve

  # Explicit config files
  chatserver serve --config /etc/chat/server_config.yml --shared-config /etc/chat/shared_config.yml

  # Environment override for a single run
  CHATSITE_LOGGING_LEVEL=DEBUG chatserver serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadServer(GetConfigFile())
	if err != nil {
		return err
	}
	shared, err := config.MustLoadShared(GetSharedConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg.Logging); err != nil {
		return err
	}

	// Cancelling this context is what asks the server to drain sessions.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopTracing, err := startTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopTracing()

	stopProfiling, err := startProfiling(cfg)
	if err != nil {
		return err
	}
	defer stopProfiling()

	logStartup(cfg, shared)

	chatMetrics, stopMetrics, err := startMetrics(cfg)
	if err != nil {
		return err
	}
	defer stopMetrics()

	st, err := openInstrumentedStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	srv := server.New(server.Config{
		ListenAddress:         cfg.Connection.ListenAddress,
		ListenPort:            cfg.Connection.ListenPort,
		AuthenticationTimeout: cfg.Connection.AuthenticationTimeout.Std(),
		Widths:                shared.Widths(),
	}, st, chatMetrics)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	return awaitShutdown(cancel, serverDone, cfg.ShutdownTimeout.Std())
}

// startTracing brings up the OTLP trace pipeline when the config asks for
// it. The returned stop function flushes buffered spans.
func startTracing(ctx context.Context, cfg *config.ServerConfig) (func(), error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "chatserver",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return func() {
		if err := shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}, nil
}

// startProfiling connects the Pyroscope agent when the config asks for it.
func startProfiling(cfg *config.ServerConfig) (func(), error) {
	shutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "chatserver",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}
	return func() {
		if err := shutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}, nil
}

// logStartup records the effective configuration once, before any session
// can connect.
func logStartup(cfg *config.ServerConfig, shared *config.SharedConfig) {
	fmt.Println("Chat-site - Token-authenticated chat server")
	logger.Info("Logging configured", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded",
		"server", configSource(GetConfigFile(), config.ServerConfigFile),
		"shared", configSource(GetSharedConfigFile(), config.SharedConfigFile))
	logger.Info("Packet header layout",
		"type_bytes", shared.Packets.TypeBytes,
		"id_bytes", shared.Packets.IDBytes,
		"data_length_bytes", shared.Packets.DataLengthBytes)

	if telemetry.IsEnabled() {
		logger.Info("Tracing on", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Tracing off")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling on", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling off")
	}
}

// startMetrics brings up the Prometheus registry and its scrape endpoint.
// It runs before the store opens so the store wrapper and the session
// instrumentation both see an enabled registry.
func startMetrics(cfg *config.ServerConfig) (metrics.ChatMetrics, func(), error) {
	if !cfg.Metrics.Enabled {
		logger.Info("Metrics off")
		return nil, func() {}, nil
	}

	metrics.InitRegistry()
	chatMetrics := prometheus.NewChatMetrics()

	shutdown, err := metrics.StartServer(fmt.Sprintf(":%d", cfg.Metrics.Port))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start metrics server: %w", err)
	}
	logger.Info("Metrics on", "port", cfg.Metrics.Port)

	return chatMetrics, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("metrics server shutdown error", logger.Err(err))
		}
	}, nil
}

// openInstrumentedStore opens the configured backend, ensures the schema,
// and wraps the store with span and metrics instrumentation.
func openInstrumentedStore(ctx context.Context, cfg *config.ServerConfig) (store.Store, error) {
	st, err := config.OpenStore(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := st.EnsureTables(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	var storeMetrics metrics.StoreMetrics
	if cfg.Metrics.Enabled {
		storeMetrics = prometheus.NewStoreMetrics()
	}
	st = store.Instrument(st, string(cfg.Database.Type), storeMetrics)
	logger.Info("Store initialized", "type", cfg.Database.Type)
	return st, nil
}

// awaitShutdown blocks until the server stops on its own or an interrupt
// arrives, then gives draining sessions until timeout to finish.
func awaitShutdown(cancel context.CancelFunc, serverDone <-chan error, timeout time.Duration) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server ready, press Ctrl+C to stop")

	select {
	case <-sigChan:
		// Restore default handling so a second interrupt kills the
		// process instead of waiting out the drain.
		signal.Stop(sigChan)
		logger.Info("Interrupt received, draining sessions")
		cancel()

		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", logger.Err(err))
				os.Exit(1)
			}
			logger.Info("Server stopped cleanly")
		case <-time.After(timeout):
			logger.Error("Shutdown timed out with sessions still closing", "timeout", timeout.String())
			os.Exit(1)
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Server exited on its own")
	}

	return nil
}
