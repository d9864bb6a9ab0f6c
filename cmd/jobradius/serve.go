package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/api"
	"github.com/amishk599/jobradius/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve /search, /local-jobs, /health and /metrics; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		setupLogger(debug, "text").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(debug, cfg.Log.Format)

	if err := cfg.RequireCredentials(); err != nil {
		logger.Error("invalid provider config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"provider", cfg.Provider.Type,
		"country", cfg.Provider.Country,
		"provider_timeout", cfg.Provider.Timeout.String(),
		"min_delay", cfg.Provider.MinDelay.String(),
		"write_timeout", cfg.Server.WriteTimeout.String(),
		"default_radius_miles", cfg.Search.DefaultRadiusMiles,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	m := metrics.New()
	svc := buildSearchService(cfg, st.jobs, logger, m)

	opts := api.Options{
		Addr:               cfg.Server.Addr,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		DefaultRadiusMiles: cfg.Search.DefaultRadiusMiles,
	}
	srv := api.NewHTTPServer(api.New(api.Deps{Search: svc, Metrics: m.Handler(), Logger: logger}, opts), opts)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("goodbye")
	return nil
}
