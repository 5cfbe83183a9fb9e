// Package config handles configuration loading for openstress.
// It supports YAML config files with environment variable overrides and an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "OPENSTRESS"

// Config represents the complete application configuration.
type Config struct {
	Data    DataConfig    `mapstructure:"data"    yaml:"data"`
	Stress  StressConfig  `mapstructure:"stress"  yaml:"stress"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// DataConfig holds market data download and cache settings.
type DataConfig struct {
	CacheDir        string `mapstructure:"cache_dir"          yaml:"cache_dir"`
	FredAPIKey      string `mapstructure:"fred_api_key"       yaml:"fred_api_key"`
	FredBaseURL     string `mapstructure:"fred_base_url"      yaml:"fred_base_url"`
	FetchTimeoutSec int    `mapstructure:"fetch_timeout_sec"  yaml:"fetch_timeout_sec"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min" yaml:"rate_limit_per_min"`
}

// StressConfig holds scenario defaults and report output settings.
type StressConfig struct {
	OutDir       string  `mapstructure:"out_dir"        yaml:"out_dir"`
	UstBP        float64 `mapstructure:"ust_bp"         yaml:"ust_bp"`
	IgBP         float64 `mapstructure:"ig_bp"          yaml:"ig_bp"`
	HyBP         float64 `mapstructure:"hy_bp"          yaml:"hy_bp"`
	ScalePerYear int     `mapstructure:"scale_per_year" yaml:"scale_per_year"`
	TopN         int     `mapstructure:"top_n"          yaml:"top_n"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Addr returns host:port for the API listener.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.openstress/config.yaml
//  3. /etc/openstress/config.yaml
//
// Environment variables override config file values.
// Format: OPENSTRESS_<SECTION>_<KEY>, e.g. OPENSTRESS_STRESS_OUT_DIR
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".openstress"))
	v.AddConfigPath("/etc/openstress")

	// Config file is optional: defaults and env vars are enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.cache_dir", "data")
	v.SetDefault("data.fred_api_key", "")
	v.SetDefault("data.fred_base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("data.fetch_timeout_sec", 30)
	v.SetDefault("data.rate_limit_per_min", 120) // FRED allows 120 req/min per key

	// Stress defaults (canonical synthetic shock)
	v.SetDefault("stress.out_dir", "out")
	v.SetDefault("stress.ust_bp", 150.0)
	v.SetDefault("stress.ig_bp", 200.0)
	v.SetDefault("stress.hy_bp", 400.0)
	v.SetDefault("stress.scale_per_year", 252)
	v.SetDefault("stress.top_n", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare FRED_API_KEY is honoured as well since most FRED tooling uses it.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Data.FredAPIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_DATA_FRED_API_KEY"); key != "" {
		cfg.Data.FredAPIKey = key
	}
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
