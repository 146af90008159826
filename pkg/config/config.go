// Package config loads and validates run configuration from YAML files with
// environment-variable overrides. It provides typed structs for every
// subsystem (Discretization, Pipeline, Search, sinks, logging and metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Supported alphabet range for SAX words.
const (
	MinAlphabetSize = 2
	MaxAlphabetSize = 20
)

// Config is the top-level configuration.
type Config struct {
	Discretization DiscretizationConfig `yaml:"discretization"`
	Pipeline       PipelineConfig       `yaml:"pipeline"`
	Search         SearchConfig         `yaml:"search"`
	Postgres       PostgresConfig       `yaml:"postgres"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	Redis          RedisConfig          `yaml:"redis"`
	Sinks          SinksConfig          `yaml:"sinks"`
	Logging        LoggingConfig        `yaml:"logging"`
	Metrics        MetricsConfig        `yaml:"metrics"`
}

// DiscretizationConfig holds the SAX parameters.
type DiscretizationConfig struct {
	WindowSize    int     `yaml:"windowSize"`
	PAASize       int     `yaml:"paaSize"`
	AlphabetSize  int     `yaml:"alphabetSize"`
	Strategy      string  `yaml:"strategy"`
	NormThreshold float64 `yaml:"normThreshold"`
}

// PipelineConfig controls the chunk-parallel discretizer.
type PipelineConfig struct {
	Threads       int           `yaml:"threads"`
	ChunkTimeout  time.Duration `yaml:"chunkTimeout"`
	ShutdownGrace time.Duration `yaml:"shutdownGrace"`
	// IndexExport, when set, receives a segment file of each run's index.
	// It is never read back.
	IndexExport string `yaml:"indexExport"`
}

// SearchConfig controls discord and motif discovery.
type SearchConfig struct {
	Discords        int     `yaml:"discords"`
	Motifs          int     `yaml:"motifs"`
	MotifRange      float64 `yaml:"motifRange"`
	Marker          string  `yaml:"marker"`
	Seed            uint64  `yaml:"seed"`
	BruteForceBelow int     `yaml:"bruteForceBelow"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	DiscordsTopic string   `yaml:"discordsTopic"`
}

// RedisConfig holds Redis connection and notification parameters.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	PoolSize   int           `yaml:"poolSize"`
	Channel    string        `yaml:"channel"`
	SummaryTTL time.Duration `yaml:"summaryTTL"`
}

// SinksConfig toggles report destinations and bounds each write.
type SinksConfig struct {
	Postgres      bool          `yaml:"postgres"`
	Kafka         bool          `yaml:"kafka"`
	Redis         bool          `yaml:"redis"`
	RetryAttempts int           `yaml:"retryAttempts"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local runs.
func Default() *Config {
	return &Config{
		Discretization: DiscretizationConfig{
			WindowSize:    100,
			PAASize:       4,
			AlphabetSize:  4,
			Strategy:      "exact",
			NormThreshold: 0.01,
		},
		Pipeline: PipelineConfig{
			Threads:       1,
			ChunkTimeout:  time.Hour,
			ShutdownGrace: 5 * time.Second,
		},
		Search: SearchConfig{
			Discords:        3,
			Motifs:          5,
			MotifRange:      1.0,
			Marker:          "symmetric",
			Seed:            0,
			BruteForceBelow: 0,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "saxsearch",
			User:            "saxsearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			DiscordsTopic: "sax-discords",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   4,
			Channel:    "sax:runs",
			SummaryTTL: 24 * time.Hour,
		},
		Sinks: SinksConfig{
			RetryAttempts: 3,
			WriteTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate checks the ranges the discretizer and search engines rely on.
func (c *Config) Validate() error {
	d := c.Discretization
	switch {
	case d.WindowSize <= 0:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "windowSize must be positive, got %d", d.WindowSize)
	case d.PAASize <= 0 || d.PAASize > d.WindowSize:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "paaSize must be in [1, %d], got %d", d.WindowSize, d.PAASize)
	case d.AlphabetSize < MinAlphabetSize || d.AlphabetSize > MaxAlphabetSize:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "alphabetSize must be in [%d, %d], got %d", MinAlphabetSize, MaxAlphabetSize, d.AlphabetSize)
	case d.NormThreshold < 0:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "normThreshold must be non-negative, got %g", d.NormThreshold)
	}
	switch strings.ToLower(d.Strategy) {
	case "none", "exact", "mindist":
	default:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "unknown strategy %q", d.Strategy)
	}
	if c.Pipeline.Threads <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "threads must be positive, got %d", c.Pipeline.Threads)
	}
	if c.Search.Discords < 0 || c.Search.Motifs < 0 || c.Search.MotifRange < 0 {
		return apperrors.New(apperrors.ErrInvalidParameter, "config", "search counts and motifRange must be non-negative")
	}
	switch strings.ToLower(c.Search.Marker) {
	case "symmetric", "span":
	default:
		return apperrors.Newf(apperrors.ErrInvalidParameter, "config", "unknown marker %q", c.Search.Marker)
	}
	return nil
}

// applyEnvOverrides reads SAX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SAX_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Discretization.WindowSize = n
		}
	}
	if v := os.Getenv("SAX_PAA_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Discretization.PAASize = n
		}
	}
	if v := os.Getenv("SAX_ALPHABET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Discretization.AlphabetSize = n
		}
	}
	if v := os.Getenv("SAX_STRATEGY"); v != "" {
		cfg.Discretization.Strategy = v
	}
	if v := os.Getenv("SAX_NORM_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Discretization.NormThreshold = f
		}
	}
	if v := os.Getenv("SAX_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Threads = n
		}
	}
	if v := os.Getenv("SAX_INDEX_EXPORT"); v != "" {
		cfg.Pipeline.IndexExport = v
	}
	if v := os.Getenv("SAX_DISCORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Discords = n
		}
	}
	if v := os.Getenv("SAX_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Search.Seed = n
		}
	}
	if v := os.Getenv("SAX_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SAX_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SAX_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SAX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SAX_SINKS"); v != "" {
		for _, name := range strings.Split(v, ",") {
			switch strings.TrimSpace(strings.ToLower(name)) {
			case "postgres":
				cfg.Sinks.Postgres = true
			case "kafka":
				cfg.Sinks.Kafka = true
			case "redis":
				cfg.Sinks.Redis = true
			}
		}
	}
	if v := os.Getenv("SAX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SAX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
