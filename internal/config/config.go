package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Allocation AllocationConfig `mapstructure:"allocation"`
	Cron       CronConfig       `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	GRPCAddr     string        `mapstructure:"grpc_addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// HTTPAddr returns host:port for the HTTP listener
func (s ServerConfig) HTTPAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

type AllocationConfig struct {
	CurrentMarket         string        `mapstructure:"current_market"`
	WalletAllocationsPath string        `mapstructure:"wallet_allocations_path"`
	BarcaAllocationsPath  string        `mapstructure:"barca_allocations_path"`
	TargetsCacheTTL       time.Duration `mapstructure:"targets_cache_ttl"`
	SeedOnStartup         bool          `mapstructure:"seed_on_startup"`
}

type CronConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Compute string `mapstructure:"compute"`
}

// legacyEnv maps config keys to the unprefixed variables older deployments set
var legacyEnv = map[string]string{
	"provider.api_key":                   "API_KEY",
	"allocation.current_market":          "CURRENT_MARKET",
	"allocation.wallet_allocations_path": "WALLET_ALLOCATIONS_PATH",
	"allocation.barca_allocations_path":  "BARCA_ALLOCATIONS_PATH",
	"server.host":                        "APP_HOST",
	"server.port":                        "APP_PORT",
	"db.url":                             "DATABASE_URL",
}

// Load reads path (YAML) when non-empty, then the environment. ALLOC_-prefixed
// variables win over the legacy names.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ALLOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "ALLOC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.grpc_addr", "127.0.0.1:3002")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.url", "sqlite://data/crypto.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("provider.base_url", "https://pro-api.coinmarketcap.com")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.limit", 1000)
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("provider.rate_limit", 0.5)
	v.SetDefault("provider.burst", 2)
	v.SetDefault("allocation.current_market", "BullMarket")
	v.SetDefault("allocation.wallet_allocations_path", "wallet_allocations.csv")
	v.SetDefault("allocation.barca_allocations_path", "wallet_barca.csv")
	v.SetDefault("allocation.targets_cache_ttl", "1m")
	v.SetDefault("allocation.seed_on_startup", true)
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.compute", "0 0 * * * *")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with. A missing API key
// is not rejected here: it fails each computation instead, so history and
// imports stay usable.
func (c Config) Validate() error {
	var errs []error

	if net.ParseIP(c.Server.Host) == nil && c.Server.Host != "localhost" {
		errs = append(errs, fmt.Errorf("server.host %q is not a valid IP address", c.Server.Host))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range 1-65535", c.Server.Port))
	}
	if c.Server.GRPCAddr != "" {
		if _, _, err := net.SplitHostPort(c.Server.GRPCAddr); err != nil {
			errs = append(errs, fmt.Errorf("server.grpc_addr %q: %w", c.Server.GRPCAddr, err))
		}
	}

	if !hasAnyPrefix(c.DB.URL, "sqlite://", "postgres://", "postgresql://") {
		errs = append(errs, fmt.Errorf("db.url %q must start with sqlite://, postgres:// or postgresql://", c.DB.URL))
	}

	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding %q must be json or console", c.Log.Encoding))
	}

	if strings.TrimSpace(c.Allocation.CurrentMarket) == "" {
		errs = append(errs, errors.New("allocation.current_market cannot be empty"))
	}

	if c.Cron.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Cron.Compute); err != nil {
			errs = append(errs, fmt.Errorf("cron.compute %q: %w", c.Cron.Compute, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
