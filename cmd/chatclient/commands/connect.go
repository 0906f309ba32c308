package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/objectiveSquid/Chat-site/internal/client"
	"github.com/objectiveSquid/Chat-site/internal/gui"
	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the server and start the web GUI",
	Long: `Connect to the chat server and serve the local web GUI.

The client authenticates with the token from client_config.yml, keeps one
session open for the whole run, and translates browser actions into chat
requests. Both peers must load identical shared packet settings or every
frame misparses.

Running chatclient without a subcommand does the same thing.

Examples:
  # Connect with the default config files in the working directory
  chatclient connect

  # Connect with custom config files
  chatclient connect --config ~/chat/client_config.yml --shared-config ~/chat/shared_config.yml

  # Connect with environment variable overrides
  CHATSITE_LOGGING_LEVEL=DEBUG chatclient connect`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadClient(GetConfigFile())
	if err != nil {
		return err
	}
	shared, err := config.MustLoadShared(GetSharedConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg.Logging); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Chat-site - Token-authenticated chat client")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded",
		"client", configSource(GetConfigFile(), config.ClientConfigFile),
		"shared", configSource(GetSharedConfigFile(), config.SharedConfigFile))

	session, err := client.Dial(ctx, client.Config{
		ConnectAddress:        cfg.Connection.ConnectAddress,
		ConnectPort:           cfg.Connection.ConnectPort,
		Token:                 cfg.User.Token,
		AuthenticationTimeout: cfg.Connection.AuthenticationTimeout.Std(),
		RequestTimeout:        cfg.Connection.RequestTimeout.Std(),
		Widths:                shared.Widths(),
		EventIDBytes:          cfg.Events.EventIDBytes,
	})
	if err != nil {
		if errors.Is(err, client.ErrAuthenticationRejected) {
			return fmt.Errorf("the server rejected the token: check 'user.token' in %s", configSource(GetConfigFile(), config.ClientConfigFile))
		}
		return err
	}

	fmt.Printf("Connected to %s as %s\n", cfg.Connection.Addr(), session.Username())
	fmt.Printf("Open http://%s in your browser\n", cfg.GUI.Addr())

	guiServer := gui.NewServer(gui.Config{
		HostAddress: cfg.GUI.HostAddress,
		HostPort:    cfg.GUI.HostPort,
	}, session)

	// Start the GUI in background
	guiDone := make(chan error, 1)
	go func() {
		guiDone <- guiServer.Start(ctx)
	}()

	// Wait for interrupt signal, GUI failure, or the session dying
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
		if err := <-guiDone; err != nil {
			logger.Error("GUI shutdown error", logger.Err(err))
		}
		session.Stop(true)
		logger.Info("Client stopped gracefully")

	case err := <-guiDone:
		signal.Stop(sigChan)
		session.Stop(true)
		if err != nil {
			return err
		}
		logger.Info("Client stopped")

	case <-session.Closed():
		signal.Stop(sigChan)
		cancel()
		<-guiDone
		return fmt.Errorf("connection to the server was lost")
	}

	return nil
}
