package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Quote providers
const (
	ProviderStatic = "static"
	ProviderHTTP   = "http"
)

// ConfigEnvVar names the environment variable holding the YAML config path
const ConfigEnvVar = "STOCKFOLIO_CONFIG"

// StaticQuote is one entry of the static quote table
type StaticQuote struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Price  string `yaml:"price"`
}

// SeedAccount is a fixture account created at startup when its key is unknown
type SeedAccount struct {
	Username string `yaml:"username"`
	APIKey   string `yaml:"api_key"`
	Cash     string `yaml:"cash"`
}

// Config holds every setting of the application
type Config struct {
	Store struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`

	Server struct {
		HTTPAddr        string        `yaml:"http_addr"`
		GRPCAddr        string        `yaml:"grpc_addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Ledger struct {
		StartingCash   string        `yaml:"starting_cash"`
		MaxRetries     int           `yaml:"max_retries"`
		RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
		RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`
	} `yaml:"ledger"`

	Valuation struct {
		MaxConcurrentLookups int `yaml:"max_concurrent_lookups"`
	} `yaml:"valuation"`

	Quote struct {
		Provider        string        `yaml:"provider"`
		URLTemplate     string        `yaml:"url_template"`
		Token           string        `yaml:"token"`
		PricePath       string        `yaml:"price_path"`
		NamePath        string        `yaml:"name_path"`
		SymbolPath      string        `yaml:"symbol_path"`
		Timeout         time.Duration `yaml:"timeout"`
		Retries         int           `yaml:"retries"`
		RateLimit       float64       `yaml:"rate_limit"`
		Burst           int           `yaml:"burst"`
		BreakerFailures int           `yaml:"breaker_failures"`
		BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
		Static          []StaticQuote `yaml:"static"`
	} `yaml:"quote"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | text
	} `yaml:"log"`

	Seed []SeedAccount `yaml:"seed"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	var cfg Config
	cfg.Store.Driver = DriverSQLite
	cfg.Server.HTTPAddr = ":3000"
	cfg.Server.GRPCAddr = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Ledger.StartingCash = "10000.00"
	cfg.Ledger.MaxRetries = 3
	cfg.Ledger.RetryBaseDelay = 10 * time.Millisecond
	cfg.Ledger.RetryMaxDelay = 250 * time.Millisecond
	cfg.Valuation.MaxConcurrentLookups = 4
	cfg.Quote.Provider = ProviderStatic
	cfg.Quote.PricePath = "$.latestPrice"
	cfg.Quote.NamePath = "$.companyName"
	cfg.Quote.SymbolPath = "$.symbol"
	cfg.Quote.Timeout = 5 * time.Second
	cfg.Quote.Retries = 2
	cfg.Quote.RateLimit = 10
	cfg.Quote.Burst = 10
	cfg.Quote.BreakerFailures = 5
	cfg.Quote.BreakerCooldown = 30 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return &cfg
}

// Load builds the configuration from defaults, the optional YAML file at
// path (or $STOCKFOLIO_CONFIG), a .env file and the environment, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	// .env is optional; production relies on real environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", slog.Any("error", err))
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	overrideWithEnv(cfg)
	cfg.resolveDSN()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv replaces settings with environment variables when present.
// Secrets such as the quote token belong here rather than in the file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.Server.HTTPAddr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("GRPC_PORT"); v != "" {
		cfg.Server.GRPCAddr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("STARTING_CASH"); v != "" {
		cfg.Ledger.StartingCash = v
	}
	if v := os.Getenv("QUOTE_PROVIDER"); v != "" {
		cfg.Quote.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("QUOTE_URL"); v != "" {
		cfg.Quote.URLTemplate = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.Quote.Token = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// resolveDSN fills in the default data source for the chosen driver
func (c *Config) resolveDSN() {
	if c.Store.DSN != "" {
		return
	}
	switch c.Store.Driver {
	case DriverSQLite:
		c.Store.DSN = "stockfolio.db"
	case DriverPostgres:
		c.Store.DSN = postgresDSNFromEnv()
	}
}

// postgresDSNFromEnv builds a connection string from individual variables
// (Docker friendly), defaulting to a local database.
func postgresDSNFromEnv() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "stockfolio"),
	)
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for driver %s", c.Store.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	cash, err := c.StartingCash()
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("starting cash cannot be negative: %s", cash)
	}

	if c.Ledger.MaxRetries < 0 {
		return errors.New("ledger max_retries cannot be negative")
	}
	if c.Valuation.MaxConcurrentLookups <= 0 {
		return errors.New("valuation max_concurrent_lookups must be positive")
	}

	switch c.Quote.Provider {
	case ProviderStatic:
		for _, q := range c.Quote.Static {
			if _, err := decimal.NewFromString(q.Price); err != nil {
				return fmt.Errorf("invalid static price for %s: %q", q.Symbol, q.Price)
			}
		}
	case ProviderHTTP:
		if !strings.Contains(c.Quote.URLTemplate, "{symbol}") {
			return fmt.Errorf("quote url_template must contain {symbol}: %q", c.Quote.URLTemplate)
		}
		if c.Quote.Timeout <= 0 {
			return errors.New("quote timeout must be positive")
		}
	default:
		return fmt.Errorf("unknown quote provider: %q", c.Quote.Provider)
	}

	for _, a := range c.Seed {
		if a.Username == "" || a.APIKey == "" {
			return errors.New("seed accounts need a username and api_key")
		}
		cash, err := decimal.NewFromString(a.Cash)
		if err != nil || cash.IsNegative() {
			return fmt.Errorf("invalid seed cash for %s: %q", a.Username, a.Cash)
		}
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// StartingCash parses the configured starting cash
func (c *Config) StartingCash() (decimal.Decimal, error) {
	cash, err := decimal.NewFromString(c.Ledger.StartingCash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid starting cash %q: %w", c.Ledger.StartingCash, err)
	}
	return cash, nil
}

// SlogLevel maps the configured level name to a slog.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		if n, convErr := strconv.Atoi(c.Log.Level); convErr == nil {
			return slog.Level(n), nil
		}
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
