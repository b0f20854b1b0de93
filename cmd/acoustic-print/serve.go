package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/acoustic-print/internal/adapters/rest"
	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
	"github.com/ewilliams-labs/acoustic-print/internal/worker"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Endpoints:
  GET  /health, /metrics, /features
  GET  /tracks, /tracks/random/fingerprint
  GET  /tracks/{id}/fingerprint, /tracks/{id}/comparison
  GET  /albums, /albums/{id}, /albums/{id}/recommendations
  POST /import`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Component("serve")
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(featureProvider(ctx, cfg), store, cfg.Worker.Workers, cfg.Worker.QueueSize)
	pool.Start(ctx)
	defer pool.Stop()

	svc := services.NewOrchestrator(store, serviceOptions(cfg))
	handler := rest.NewHandler(svc, pool)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("API is running")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
			return err
		}
	}
	return nil
}
