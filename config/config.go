package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Time          TimeConfig          `yaml:"time"`
	Leaderboard   LeaderboardConfig   `yaml:"leaderboard"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration. An empty DSN keeps all state
// in memory.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL           string `yaml:"url"`
	NKeySeed      string `yaml:"nkey_seed"`
	DurablePrefix string `yaml:"durable_prefix"`
}

// HTTPConfig holds the REST API settings.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// TimeConfig selects the wall clock used for daily quotas and active days.
type TimeConfig struct {
	// Timezone is an IANA name. Empty or "Local" means the process zone.
	Timezone string `yaml:"timezone"`
}

// LeaderboardConfig holds ranking and snapshot settings.
type LeaderboardConfig struct {
	Weights          leaderboarddomain.ScoreWeights `yaml:"weights"`
	SnapshotInterval time.Duration                  `yaml:"snapshot_interval"`
	RetentionDays    int                            `yaml:"retention_days"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		NATS: NATSConfig{DurablePrefix: "envsim"},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
		JWT: JWTConfig{
			Issuer:     "envsim",
			DefaultTTL: 24 * time.Hour,
		},
		Leaderboard: LeaderboardConfig{
			Weights:          leaderboarddomain.DefaultScoreWeights(),
			SnapshotInterval: time.Hour,
			RetentionDays:    90,
		},
		Observability: ObservabilityConfig{
			Environment: "development",
			LogLevel:    "info",
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to defaults plus
// environment. A .env file in the working directory is loaded first.
func LoadConfig(filename string) (*Config, error) {
	if err := loadEnvIfExists(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvIfExists() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load()
	}
	return nil
}

// --- OVERRIDE WITH ENV VARS IF PRESENT ---
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Time.Timezone = v
	}
	if v := os.Getenv("LEADERBOARD_SIMULATION_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_SIMULATION_CAP value: %w", err)
		}
		cfg.Leaderboard.Weights.SimulationCap = n
	}
	if v := os.Getenv("LEADERBOARD_SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_SNAPSHOT_INTERVAL value: %w", err)
		}
		cfg.Leaderboard.SnapshotInterval = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	if err := c.Leaderboard.Weights.Validate(); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		return fmt.Errorf("http: rate limit must be positive")
	}
	if c.Leaderboard.RetentionDays < 0 {
		return fmt.Errorf("leaderboard: retention_days must not be negative")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Time.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Time.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Time.Timezone, err)
	}
	return loc, nil
}
