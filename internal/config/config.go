package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const minSecretLength = 16

type DBConfig struct {
	ConnectionString string        `yaml:"connection_string" env:"DB_CONNECTION_STRING"`
	MaxOpenConns     int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	MaxIdleConns     int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type Config struct {
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	PprofAddr       string        `yaml:"pprof_addr" env:"PPROF_ADDR"`

	DB DBConfig `yaml:"db"`

	JWTSecret      string        `yaml:"-" env:"JWT_SECRET"`
	JWTSecretFile  string        `yaml:"jwt_secret_file" env:"JWT_SECRET_FILE"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"60m"`
	TOTPIssuer     string        `yaml:"totp_issuer" env:"TOTP_ISSUER" env-default:"HomeBudget"`

	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval" env:"SESSION_CLEANUP_INTERVAL" env-default:"1m"`

	StartingBalance  string   `yaml:"starting_balance" env:"STARTING_BALANCE" env-default:"1000.00"`
	PresetCategories []string `yaml:"preset_categories" env:"PRESET_CATEGORIES" env-default:"food,car,recreation" env-separator:","`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads .env (if present), an optional YAML file named by CONFIG_PATH and
// then the process environment, which wins over both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file, continuing with system environment variables", "error", err)
	}

	cfg := &Config{}
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't read configuration: %w", err)
	}

	if cfg.JWTSecret == "" && cfg.JWTSecretFile != "" {
		secret, err := os.ReadFile(cfg.JWTSecretFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(secret))
	}

	cfg.PresetCategories = normalizeNames(cfg.PresetCategories)

	return cfg, nil
}

// Validate checks everything the HTTP server needs and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if err := c.ValidateDatabase(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET or JWT_SECRET_FILE must be provided")
	} else if len(c.JWTSecret) < minSecretLength {
		problems = append(problems, fmt.Sprintf("JWT secret must be at least %d bytes", minSecretLength))
	}

	if c.AccessTokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid access token TTL %s: must be positive", c.AccessTokenTTL))
	}

	if c.SessionCleanupInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid session cleanup interval %s: must be at least 1s", c.SessionCleanupInterval))
	}

	balance, err := decimal.NewFromString(c.StartingBalance)
	if err != nil {
		problems = append(problems, fmt.Sprintf("invalid starting balance '%s': %v", c.StartingBalance, err))
	} else if balance.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid starting balance '%s': must not be negative", c.StartingBalance))
	}

	for _, name := range c.PresetCategories {
		if len([]rune(name)) > 50 {
			problems = append(problems, fmt.Sprintf("preset category '%s' is longer than 50 characters", name))
		}
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of [text json]", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ValidateDatabase is the subset used by maintenance commands that only talk to PostgreSQL.
func (c *Config) ValidateDatabase() error {
	if c.DB.ConnectionString == "" {
		return errors.New("missing DB_CONNECTION_STRING")
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %d: must be at least 1", c.DB.MaxOpenConns)
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("invalid DB_MAX_IDLE_CONNS %d: must be between 0 and %d", c.DB.MaxIdleConns, c.DB.MaxOpenConns)
	}
	return nil
}

// StartingBalanceAmount is StartingBalance rounded to cents; zero when it does not parse.
func (c *Config) StartingBalanceAmount() decimal.Decimal {
	balance, err := decimal.NewFromString(c.StartingBalance)
	if err != nil {
		return decimal.Zero
	}
	return balance.Round(2)
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of [debug info warn error]", level)
}

func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
