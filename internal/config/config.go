package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobradius/internal/model"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "JOBRADIUS_CONFIG"

// DefaultPath is tried last. A missing file at this path is not an error.
const DefaultPath = "config.yaml"

// Config is the root configuration for jobradius.
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Search   SearchConfig
	Storage  StorageConfig
	Usage    UsageConfig
	Log      LogConfig
	// Plans replaces the built-in catalog when non-empty.
	Plans []model.Plan
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // must exceed the worst-case cascade
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ProviderConfig selects and configures the external job search API.
type ProviderConfig struct {
	Type           string // only "adzuna"
	BaseURL        string
	AppID          string // expanded from env var by Load
	AppKey         string
	Country        string
	ResultsPerPage int
	Timeout        time.Duration // per strategy attempt
	MinDelay       time.Duration // minimum gap between provider requests
}

// SearchConfig tunes the strategy cascade.
type SearchConfig struct {
	DefaultRadiusMiles float64
	// FallbackLocalities drives the major_city_* tier. Nil means the built-in
	// list; an explicitly empty list disables the tier.
	FallbackLocalities []string
}

// StorageConfig selects where local job postings live.
type StorageConfig struct {
	Type string `yaml:"type"` // "memory" or "sqlite"
	Path string `yaml:"path"` // sqlite file, defaults to jobradius.db
}

// UsageConfig selects where entitlement counters and subscriptions live.
type UsageConfig struct {
	Backend  string `yaml:"backend"`   // "memory", "sqlite" or "redis"
	RedisURL string `yaml:"redis_url"` // required for "redis"
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `yaml:"format"` // "text" or "json"
}

const (
	ProviderAdzuna = "adzuna"

	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	UsageRedis    = "redis"

	defaultAddr            = ":3001"
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 15 * time.Second
	defaultProviderTimeout = 10 * time.Second
	defaultMinDelay        = 200 * time.Millisecond
	defaultRadiusMiles     = 5.0
	defaultCountry         = "in"
	defaultResultsPerPage  = 20
	defaultSQLitePath      = "jobradius.db"

	// writeTimeoutSlack is added to the worst-case cascade when no write
	// timeout is configured.
	writeTimeoutSlack = 5 * time.Second

	// fixedStrategies is the most strategies a cascade can plan besides the
	// major-city tier: precise, wider, specific, postal, skills-only, country.
	fixedStrategies = 6
)

// defaultFallbackLocalities mirrors the planner's built-in list so the
// worst-case cascade can be computed without importing it.
var defaultFallbackLocalities = []string{"Bangalore", "Mumbai", "Delhi", "Hyderabad", "Chennai", "Pune"}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server   rawServerConfig   `yaml:"server"`
	Provider rawProviderConfig `yaml:"provider"`
	Search   rawSearchConfig   `yaml:"search"`
	Storage  StorageConfig     `yaml:"storage"`
	Usage    UsageConfig       `yaml:"usage"`
	Log      LogConfig         `yaml:"log"`
	Plans    []rawPlan         `yaml:"plans"`
}

type rawServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	IdleTimeout     string `yaml:"idle_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type rawProviderConfig struct {
	Type           string `yaml:"type"`
	BaseURL        string `yaml:"base_url"`
	AppID          string `yaml:"app_id"`
	AppKey         string `yaml:"app_key"`
	Country        string `yaml:"country"`
	ResultsPerPage int    `yaml:"results_per_page"`
	Timeout        string `yaml:"timeout"`
	MinDelay       string `yaml:"min_delay"`
}

type rawSearchConfig struct {
	DefaultRadiusMiles float64   `yaml:"default_radius_miles"`
	FallbackLocalities *[]string `yaml:"fallback_localities"`
}

type rawPlan struct {
	ID       string                 `yaml:"id"`
	Name     string                 `yaml:"name"`
	Price    float64                `yaml:"price"`
	Interval string                 `yaml:"interval"`
	Role     string                 `yaml:"role"`
	Features []string               `yaml:"features"`
	Limits   map[string]model.Limit `yaml:"limits"`
}

// ResolvePath picks the config file: the flag value, then $JOBRADIUS_CONFIG,
// then ./config.yaml. explicit reports whether the file must exist.
func ResolvePath(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// LoadOrDefault loads the resolved config file, falling back to Default when
// the implicit ./config.yaml does not exist.
func LoadOrDefault(flag string) (*Config, error) {
	path, explicit := ResolvePath(flag)
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return cfg, err
}

// Default returns the configuration used when no file is present. Provider
// credentials come from ADZUNA_APP_ID and ADZUNA_APP_KEY.
func Default() (*Config, error) {
	return parse([]byte("provider:\n  app_id: ${ADZUNA_APP_ID}\n  app_key: ${ADZUNA_APP_KEY}\n"))
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{Addr: orDefault(raw.Server.Addr, defaultAddr)},
		Provider: ProviderConfig{
			Type:           strings.ToLower(orDefault(raw.Provider.Type, ProviderAdzuna)),
			BaseURL:        raw.Provider.BaseURL,
			AppID:          raw.Provider.AppID,
			AppKey:         raw.Provider.AppKey,
			Country:        orDefault(raw.Provider.Country, defaultCountry),
			ResultsPerPage: raw.Provider.ResultsPerPage,
		},
		Search: SearchConfig{DefaultRadiusMiles: raw.Search.DefaultRadiusMiles},
		Storage: StorageConfig{
			Type: strings.ToLower(orDefault(raw.Storage.Type, StorageMemory)),
			Path: raw.Storage.Path,
		},
		Usage: UsageConfig{
			Backend:  strings.ToLower(raw.Usage.Backend),
			RedisURL: raw.Usage.RedisURL,
		},
		Log: LogConfig{Format: strings.ToLower(orDefault(raw.Log.Format, "text"))},
	}

	if cfg.Provider.ResultsPerPage == 0 {
		cfg.Provider.ResultsPerPage = defaultResultsPerPage
	}
	if cfg.Search.DefaultRadiusMiles == 0 {
		cfg.Search.DefaultRadiusMiles = defaultRadiusMiles
	}
	if raw.Search.FallbackLocalities != nil {
		cfg.Search.FallbackLocalities = append([]string{}, *raw.Search.FallbackLocalities...)
	}
	if cfg.Storage.Type == StorageSQLite && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultSQLitePath
	}
	// Usage follows the job store unless configured otherwise.
	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = cfg.Storage.Type
	}

	durations := []struct {
		field string
		raw   string
		def   time.Duration
		dst   *time.Duration
	}{
		{"server.read_timeout", raw.Server.ReadTimeout, defaultReadTimeout, &cfg.Server.ReadTimeout},
		{"server.write_timeout", raw.Server.WriteTimeout, 0, &cfg.Server.WriteTimeout},
		{"server.idle_timeout", raw.Server.IdleTimeout, defaultIdleTimeout, &cfg.Server.IdleTimeout},
		{"server.shutdown_timeout", raw.Server.ShutdownTimeout, defaultShutdownTimeout, &cfg.Server.ShutdownTimeout},
		{"provider.timeout", raw.Provider.Timeout, defaultProviderTimeout, &cfg.Provider.Timeout},
		{"provider.min_delay", raw.Provider.MinDelay, defaultMinDelay, &cfg.Provider.MinDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			*d.dst = d.def
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.field, d.raw, err)
		}
		*d.dst = v
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.WorstCaseCascade() + writeTimeoutSlack
	}

	plans, err := convertPlans(raw.Plans)
	if err != nil {
		return nil, err
	}
	cfg.Plans = plans

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WorstCaseCascade is the longest a single search can take: every planned
// strategy running into the provider timeout.
func (c *Config) WorstCaseCascade() time.Duration {
	localities := c.Search.FallbackLocalities
	if localities == nil {
		localities = defaultFallbackLocalities
	}
	return time.Duration(fixedStrategies+len(localities)) * c.Provider.Timeout
}

func convertPlans(raws []rawPlan) ([]model.Plan, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	plans := make([]model.Plan, 0, len(raws))
	for i, rp := range raws {
		p := model.Plan{
			ID:       rp.ID,
			Name:     rp.Name,
			Price:    rp.Price,
			Interval: model.BillingInterval(strings.ToLower(orDefault(rp.Interval, string(model.Monthly)))),
			Role:     model.Role(strings.ToLower(rp.Role)),
			Features: rp.Features,
			Limits:   make(map[model.ActionKind]model.Limit, len(rp.Limits)),
		}
		switch p.Interval {
		case model.Monthly, model.Yearly:
		default:
			return nil, fmt.Errorf("plans[%d] %q: interval must be \"monthly\" or \"yearly\", got %q", i, rp.ID, rp.Interval)
		}
		switch p.Role {
		case model.RoleStudent, model.RoleEmployer:
		default:
			return nil, fmt.Errorf("plans[%d] %q: role must be \"student\" or \"employer\", got %q", i, rp.ID, rp.Role)
		}
		for key, limit := range rp.Limits {
			action, err := model.ParseActionKind(key)
			if err != nil {
				return nil, fmt.Errorf("plans[%d] %q: %w", i, rp.ID, err)
			}
			p.Limits[action] = limit
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func validate(cfg *Config) error {
	if cfg.Provider.Type != ProviderAdzuna {
		return fmt.Errorf("provider.type must be %q, got %q", ProviderAdzuna, cfg.Provider.Type)
	}
	if cfg.Provider.ResultsPerPage < 1 || cfg.Provider.ResultsPerPage > 50 {
		return fmt.Errorf("provider.results_per_page must be between 1 and 50, got %d", cfg.Provider.ResultsPerPage)
	}
	if cfg.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %v", cfg.Provider.Timeout)
	}
	if cfg.Provider.MinDelay < 0 {
		return fmt.Errorf("provider.min_delay must not be negative, got %v", cfg.Provider.MinDelay)
	}
	if cfg.Search.DefaultRadiusMiles < 0 {
		return fmt.Errorf("search.default_radius_miles must not be negative, got %v", cfg.Search.DefaultRadiusMiles)
	}

	if worst := cfg.WorstCaseCascade(); cfg.Server.WriteTimeout <= worst {
		return fmt.Errorf("server.write_timeout (%v) must exceed the worst-case search time (%v)", cfg.Server.WriteTimeout, worst)
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %v", cfg.Server.ReadTimeout)
	}

	switch cfg.Storage.Type {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("storage.type must be \"memory\" or \"sqlite\", got %q", cfg.Storage.Type)
	}

	switch cfg.Usage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if cfg.Storage.Type != StorageSQLite {
			return fmt.Errorf("usage.backend %q requires storage.type %q", StorageSQLite, StorageSQLite)
		}
	case UsageRedis:
		if cfg.Usage.RedisURL == "" {
			return fmt.Errorf("usage.redis_url is required when usage.backend is \"redis\"")
		}
		if !strings.HasPrefix(cfg.Usage.RedisURL, "redis://") && !strings.HasPrefix(cfg.Usage.RedisURL, "rediss://") {
			return fmt.Errorf("usage.redis_url must start with redis:// or rediss://")
		}
	default:
		return fmt.Errorf("usage.backend must be \"memory\", \"sqlite\" or \"redis\", got %q", cfg.Usage.Backend)
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", cfg.Log.Format)
	}
	return nil
}

// RequireCredentials reports an error when the provider cannot authenticate.
// Only commands that call the provider need it.
func (c *Config) RequireCredentials() error {
	if c.Provider.AppID == "" || c.Provider.AppKey == "" {
		return fmt.Errorf("provider.app_id and provider.app_key are required (set ADZUNA_APP_ID and ADZUNA_APP_KEY)")
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
