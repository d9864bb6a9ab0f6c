package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/adapter"
	"github.com/amishk599/jobradius/internal/config"
	"github.com/amishk599/jobradius/internal/entitlement"
	"github.com/amishk599/jobradius/internal/metrics"
	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/normalize"
	"github.com/amishk599/jobradius/internal/ratelimit"
	"github.com/amishk599/jobradius/internal/search"
	"github.com/amishk599/jobradius/internal/store"
	"github.com/amishk599/jobradius/internal/strategy"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradius",
	Short: "Hyperlocal job search",
	Long:  "jobradius finds jobs within a few miles of a seeker by cascading through progressively broader provider queries, merged with locally posted jobs.",
	// Default to `serve` so that `jobradius` with no args runs the API.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADIUS_CONFIG env var > "./config.yaml" > built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	return config.LoadOrDefault(path)
}

func setupLogger(dbg bool, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// silentLogger is for TUI commands: log output before the alt-screen starts
// corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stores groups the persistence backends selected by config.
type stores struct {
	jobs  model.LocalJobStore
	usage model.UsageStore
	subs  model.SubscriptionStore

	closers []io.Closer
}

func (s *stores) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{}

	var sqlStore *store.SQLiteStore
	switch cfg.Storage.Type {
	case config.StorageSQLite:
		s, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		st.closers = append(st.closers, s)
		sqlStore = s
		st.jobs = s
	default:
		st.jobs = store.NewMemoryJobStore()
	}

	// Subscriptions live next to the job store.
	if sqlStore != nil {
		st.subs = sqlStore
	} else {
		st.subs = store.NewMemorySubscriptionStore()
	}

	switch cfg.Usage.Backend {
	case config.StorageSQLite:
		st.usage = sqlStore
	case config.UsageRedis:
		client, err := store.NewRedisClient(ctx, cfg.Usage.RedisURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("open usage store: %w", err)
		}
		st.closers = append(st.closers, client)
		st.usage = store.NewRedisUsageStore(client)
	default:
		st.usage = store.NewMemoryUsageStore()
	}

	logger.Info("stores opened",
		"storage", cfg.Storage.Type,
		"path", cfg.Storage.Path,
		"usage", cfg.Usage.Backend,
	)
	return st, nil
}

// buildSearchService wires provider, rate limiter, planner, executor and
// normalizer. m may be nil.
func buildSearchService(cfg *config.Config, jobs model.LocalJobStore, logger *slog.Logger, m *metrics.Metrics) *search.Service {
	httpClient := &http.Client{Timeout: cfg.Provider.Timeout}
	var provider model.SearchProvider = adapter.NewAdzunaAdapter(adapter.AdzunaConfig{
		BaseURL:        cfg.Provider.BaseURL,
		AppID:          cfg.Provider.AppID,
		AppKey:         cfg.Provider.AppKey,
		Country:        cfg.Provider.Country,
		ResultsPerPage: cfg.Provider.ResultsPerPage,
	}, httpClient)
	provider = ratelimit.NewRateLimitedProvider(provider, ratelimit.NewLimiter(cfg.Provider.MinDelay))

	var (
		execObs   strategy.Observer
		searchObs search.Observer
	)
	if m != nil {
		execObs, searchObs = m, m
	}

	return search.NewService(
		strategy.NewPlanner(cfg.Search.FallbackLocalities),
		strategy.NewExecutor(provider, cfg.Provider.Timeout, logger, execObs),
		normalize.New(nil),
		jobs,
		logger,
		searchObs,
	)
}

// buildEvaluator uses the configured plans, or the built-in catalog. m may be nil.
func buildEvaluator(cfg *config.Config, st *stores, logger *slog.Logger, m *metrics.Metrics) (*entitlement.Evaluator, error) {
	catalog := entitlement.DefaultCatalog()
	if len(cfg.Plans) > 0 {
		c, err := entitlement.NewCatalog(cfg.Plans)
		if err != nil {
			return nil, fmt.Errorf("load plans: %w", err)
		}
		catalog = c
	}
	var obs entitlement.Observer
	if m != nil {
		obs = m
	}
	return entitlement.NewEvaluator(catalog, st.subs, st.usage, logger, obs), nil
}
