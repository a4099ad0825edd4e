package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evewatch/evewatch/internal/engine"
	"github.com/evewatch/evewatch/internal/handlers"
	"github.com/evewatch/evewatch/internal/history"
	"github.com/evewatch/evewatch/internal/logging"
	"github.com/evewatch/evewatch/internal/server"
	"github.com/evewatch/evewatch/internal/tailer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the alert history API server",
	Long: `Starts the HTTP server that serves the alert history. New alerts
are ingested from the EVE log on demand as queries arrive.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("evewatch"))
	logging.SetDefault(logger)

	slog.Info("Starting evewatch",
		slog.Int("port", cfg.Server.Port),
		slog.String("eve_path", cfg.Engine.EvePath),
		slog.String("data_dir", cfg.Engine.DataDir),
		slog.Int("history_capacity", cfg.Engine.HistoryCapacity),
	)

	store, err := history.Open(cfg.Engine.DataDir, cfg.Engine.HistoryCapacity)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	slog.Info("History loaded",
		slog.Int("records", store.Len()),
		slog.Int64("checkpoint_offset", store.Checkpoint().Offset),
	)

	eng := engine.New(tailer.New(cfg.Engine.EvePath), store, logger)
	handler := handlers.New(eng, logger, cfg.Engine.DefaultLimit, cfg.Engine.EvePath)
	router := server.NewRouter(handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("Shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
