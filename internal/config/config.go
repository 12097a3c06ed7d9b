package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jtrask/folio/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

type StorageConfig struct {
	Type        string   `mapstructure:"type"` // "localfs" or "s3"
	Path        string   `mapstructure:"path"` // For localfs
	S3          S3Config `mapstructure:"s3"`   // For S3
	PricePrefix string   `mapstructure:"price_prefix"`
	LedgerKey   string   `mapstructure:"ledger_key"`
	TokensKey   string   `mapstructure:"tokens_key"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AuthConfig holds token authentication settings.
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ReplayConfig holds replay engine settings.
type ReplayConfig struct {
	// ProbeDays is how many calendar days past the requested date the
	// resolver tries before giving up on a transaction.
	ProbeDays int `mapstructure:"probe_days"`
}

// ChartConfig holds chart rendering settings.
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.JobTTLHours == 0 {
		cfg.Server.JobTTLHours = 1
	}
	if cfg.Server.MaxJobs == 0 {
		cfg.Server.MaxJobs = 100
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "localfs"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data"
	}
	if cfg.Storage.PricePrefix == "" {
		cfg.Storage.PricePrefix = "stock_data"
	}
	if cfg.Storage.LedgerKey == "" {
		cfg.Storage.LedgerKey = "transactions.json"
	}
	if cfg.Storage.TokensKey == "" {
		cfg.Storage.TokensKey = "tokens.json"
	}
	if cfg.Replay.ProbeDays == 0 {
		cfg.Replay.ProbeDays = 10
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 900
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 450
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required for localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
		if c.Storage.S3.Region == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 region required when storage type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if c.Replay.ProbeDays < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("probe_days cannot be negative, got %d", c.Replay.ProbeDays))
	}

	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("chart dimensions too small: %dx%d", c.Chart.Width, c.Chart.Height))
	}

	return nil
}
