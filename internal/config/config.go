package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/reel/internal/domain"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Network NetworkConfig `mapstructure:"network"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	UI      UIConfig      `mapstructure:"ui"`
}

// APIConfig holds remote catalog configuration
type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Key          string        `mapstructure:"key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second
	MaxRetries   int           `mapstructure:"max_retries"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Dir string        `mapstructure:"dir"` // empty = memory only
	TTL time.Duration `mapstructure:"ttl"`
}

// NetworkConfig holds reachability probing configuration
type NetworkConfig struct {
	ProbeURL      string        `mapstructure:"probe_url"` // defaults to the API base URL
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the optional Prometheus endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty = disabled
}

// UIConfig holds terminal UI configuration
type UIConfig struct {
	ShowOverview bool `mapstructure:"show_overview"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Timeout:      10 * time.Second,
			RateLimit:    20,
			MaxRetries:   3,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
			TTL: 5 * time.Minute,
		},
		Network: NetworkConfig{
			ProbeInterval: 15 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		UI: UIConfig{
			ShowOverview: true,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel", "reel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "reel.log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "cache")
	}
}

// Load reads configuration. Precedence, lowest first: defaults, the YAML
// config file, REEL_* environment variables (a .env file in the working
// directory is loaded into the environment first). An empty path searches
// the default config directory and the working directory.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (REEL_API_KEY -> api.key)
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	if cfg.Network.ProbeURL == "" {
		cfg.Network.ProbeURL = cfg.API.BaseURL
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply on Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.image_base_url", d.API.ImageBaseURL)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.max_retries", d.API.MaxRetries)

	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("network.probe_url", d.Network.ProbeURL)
	v.SetDefault("network.probe_interval", d.Network.ProbeInterval)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("ui.show_overview", d.UI.ShowOverview)
}

// Validate checks the settings required to talk to the remote catalog.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("%w: set api.key in config.yaml or REEL_API_KEY", domain.ErrMissingAPIKey)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
