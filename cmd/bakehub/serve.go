package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/bakehub/internal/api"
	"github.com/creamcroissant/bakehub/internal/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BakeHub server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler, err := a.scheduler()
	if err != nil {
		return err
	}
	scheduler.Start()

	var opts []api.RouterOption
	opts = append(opts, api.WithHTTPConfig(cfg.HTTP))
	if cfg.Security.RateLimitEnabled {
		opts = append(opts, api.WithRateLimit(cfg.Security, a.infra.RateLimiter))
	}
	router := api.NewRouter(logger, a.services, cfg.Metrics, opts...)

	server := bootstrap.NewHTTPServer(cfg.HTTP, router)

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "env", cfg.Log.Environment, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Deliver whatever is still queued before the process exits.
	if err := scheduler.RunNow(shutdownCtx, "notify.email"); err != nil {
		logger.Warn("final email flush failed", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
