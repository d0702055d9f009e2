package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SwanFlutter/image-picker-master/internal/api"
	"github.com/SwanFlutter/image-picker-master/internal/config"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/plugin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge server",
	Long: `Start the HTTP and WebSocket bridge for the image_picker_master channel.

Method calls are POSTed to /api/channels/<channel> or streamed over
/api/channels/<channel>/ws. Calls run one at a time in arrival order.

The server listens on server_host (127.0.0.1 by default). Browser
requests are refused unless their Origin is listed in allowed_origins.`,
	Example: `  # Start server on default port (8765)
  imagepicker serve

  # Start server on custom port
  imagepicker serve --port 9090

  # Start with specific config file
  imagepicker serve --config /path/to/config.yaml

  # Start with debug logging
  imagepicker serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	log.Info().Str("path", configMgr.GetConfigPath()).Str("log_level", cfg.LogLevel).Msg("Configuration loaded")

	configMgr.Watch(func(c *config.Config) {
		logger.SetLevel(c.LogLevel)
	})

	p, err := plugin.New(plugin.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("failed to initialize plugin: %w", err)
	}
	defer p.Close()

	server := api.NewServer(p, cfg.AllowedOrigins...)

	// Start server in a goroutine
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start(cfg.ServerHost, cfg.ServerPort)
	}()

	addr := api.ListenAddr(cfg.ServerHost, cfg.ServerPort)
	log.Info().
		Str("channel", cfg.Channel).
		Str("http", fmt.Sprintf("http://%s/api/channels/%s", addr, cfg.Channel)).
		Str("ws", fmt.Sprintf("ws://%s/api/channels/%s/ws", addr, cfg.Channel)).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Bridge is running")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
	}

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
