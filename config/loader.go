package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chatui/models"
	"chatui/popover"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the config directory
const FileName = "chatui.yaml"

// Config represents the complete configuration
type Config struct {
	Backend          BackendConfig    `yaml:"backend"`
	DefaultSelection models.Selection `yaml:"default_selection"`
	Popover          PopoverConfig    `yaml:"popover"`
	SampleQuestions  []string         `yaml:"sample_questions"`
	Session          SessionConfig    `yaml:"session"`
	RateLimit        RateLimitConfig  `yaml:"rate_limit"`
	Prefs            PrefsConfig      `yaml:"prefs"`
}

// BackendConfig from YAML
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	// Empty or "0" disables the background health probe
	HealthInterval string `yaml:"health_interval"`
}

// PopoverConfig from YAML
type PopoverConfig struct {
	PopularModels []string `yaml:"popular_models"`
	ProviderOrder []string `yaml:"provider_order"`
	MaxFavorites  int      `yaml:"max_favorites"`
}

// SessionConfig from YAML
type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

// RateLimitConfig from YAML
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// PrefsConfig from YAML
type PrefsConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:5000",
			Timeout:        "60s",
			HealthInterval: "30s",
		},
		DefaultSelection: models.DefaultSelection,
		Popover: PopoverConfig{
			PopularModels: append([]string(nil), popover.DefaultPopularNames...),
			ProviderOrder: append([]string(nil), popover.DefaultProviderOrder...),
			MaxFavorites:  12,
		},
		SampleQuestions: []string{
			"How does AI work?",
			"Are black holes real?",
			`How many Rs are in the word "strawberry"?`,
			"What is the meaning of life?",
		},
		Session: SessionConfig{
			TTL:           "4h",
			SweepInterval: "5m",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Prefs: PrefsConfig{
			Driver: "sqlite",
			Path:   "chatui_prefs.db",
		},
	}
}

// Path returns the location of the configuration file in configDir
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// LoadConfig loads chatui.yaml from configDir. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(configDir string) (*Config, error) {
	config := Default()

	path := Path(configDir)
	if err := loadYAMLFile(path, config); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
		}
		log.Printf("[Config] %s not found, using defaults", path)
	}

	// Expand environment variables
	expandEnvVars(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return config, nil
}

// loadYAMLFile loads a YAML file into a structure
func loadYAMLFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// expandEnvVars expands environment variables in configuration
func expandEnvVars(config *Config) {
	config.Backend.BaseURL = expandEnv(config.Backend.BaseURL)
	config.Backend.Timeout = expandEnv(config.Backend.Timeout)
	config.Backend.HealthInterval = expandEnv(config.Backend.HealthInterval)
	config.Prefs.Driver = expandEnv(config.Prefs.Driver)
	config.Prefs.Path = expandEnv(config.Prefs.Path)
	config.DefaultSelection.ModelName = expandEnv(config.DefaultSelection.ModelName)
	config.DefaultSelection.Provider = expandEnv(config.DefaultSelection.Provider)
	config.DefaultSelection.APIName = expandEnv(config.DefaultSelection.APIName)
}

// expandEnv expands environment variables in a string
func expandEnv(s string) string {
	if strings.Contains(s, "${") {
		return os.Expand(s, func(key string) string {
			// Handle default values like ${VAR:-default}
			parts := strings.SplitN(key, ":-", 2)
			value := os.Getenv(parts[0])
			if value == "" && len(parts) > 1 {
				return parts[1]
			}
			return value
		})
	}
	return s
}

// Validate checks durations, the default media type and the prefs driver
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	for name, d := range map[string]string{
		"backend.timeout":         c.Backend.Timeout,
		"backend.health_interval": c.Backend.HealthInterval,
		"session.ttl":             c.Session.TTL,
		"session.sweep_interval":  c.Session.SweepInterval,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	mt, err := models.ParseMediaType(string(c.DefaultSelection.MediaType))
	if err != nil {
		return fmt.Errorf("default_selection: %w", err)
	}
	c.DefaultSelection.MediaType = mt

	switch c.Prefs.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("prefs.driver: unknown driver %q", c.Prefs.Driver)
	}
	return nil
}

// BackendTimeout returns the backend request timeout
func (c *Config) BackendTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 60*time.Second)
}

// HealthInterval returns how often the backend is probed, zero when disabled
func (c *Config) HealthInterval() time.Duration {
	d, err := time.ParseDuration(c.Backend.HealthInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// SessionTTL returns how long an idle session is kept
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Session.TTL, 4*time.Hour)
}

// SweepInterval returns how often idle sessions are evicted
func (c *Config) SweepInterval() time.Duration {
	return parseDuration(c.Session.SweepInterval, 5*time.Minute)
}

// PopoverOptions returns the popover layout options
func (c *Config) PopoverOptions() popover.Options {
	return popover.Options{
		PopularNames:  c.Popover.PopularModels,
		ProviderOrder: c.Popover.ProviderOrder,
		MaxFavorites:  c.Popover.MaxFavorites,
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
