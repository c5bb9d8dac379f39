package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"healthpage/internal/config"
	"healthpage/internal/logger"
	"healthpage/internal/server"
	"healthpage/internal/store"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server with the form and inline preview",
		Long: `Start the healthpage web server.

The server provides:
  • A form for age and gender that runs the pipeline and previews the page inline
  • POST /api/generate for programmatic access
  • GET /api/runs for recorded run history
  • A health check endpoint

Examples:
  # Start server on default port 8080
  healthpage serve

  # Start on custom port
  healthpage serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	orch, cfg, err := buildPipeline(ctx, nil)
	if err != nil {
		return err
	}
	defer orch.Close()

	// Override server config from flags if provided
	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	var history server.History
	if cfg.Cache.Enabled {
		s, err := store.NewStore(cfg.Cache.Directory)
		if err != nil {
			logger.Warn("Run history unavailable", "error", err.Error())
		} else {
			defer s.Close()
			history = s
		}
	}

	srv := server.New(orch, history, serverCfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		logger.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal or an error from server
	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		logger.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ParseDuration(serverCfg.ShutdownTimeout, 10*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed, forcing close", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info("Server stopped successfully")
	}

	return nil
}
