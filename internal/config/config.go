// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Confirmation styles for a successful submission.
const (
	ConfirmToast       = "toast"
	ConfirmReloadAlert = "reload-alert"
)

// Config holds all signup configuration.
type Config struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	Form      Form          `yaml:"form"`
	Analytics Analytics     `yaml:"analytics"`
	Log       Log           `yaml:"log"`
}

// Form holds the sign-up form behavior toggles.
type Form struct {
	AllowSpaceInName bool          `yaml:"allow_space_in_name"`
	RequireEmail     bool          `yaml:"require_email"`
	BlurTouches      bool          `yaml:"blur_touches"`   // Show a field's error once it loses focus
	TrimName         bool          `yaml:"trim_name"`      // Trim the name before sending
	TruncatePhone    bool          `yaml:"truncate_phone"` // Send only the last 10 digits
	Confirmation     string        `yaml:"confirmation"`   // "toast" | "reload-alert"
	ToastDuration    time.Duration `yaml:"toast_duration"`
}

// Analytics holds page view reporting settings.
type Analytics struct {
	MeasurementID string `yaml:"measurement_id"`
	APISecret     string `yaml:"api_secret"`
	CollectURL    string `yaml:"collect_url"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://dev.api.gearx.ai",
		Timeout:  30 * time.Second,
		Form: Form{
			Confirmation:  ConfirmToast,
			ToastDuration: 3 * time.Second,
		},
		Analytics: Analytics{
			CollectURL: "https://www.google-analytics.com/mp/collect",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint cannot be empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: endpoint must be an http(s) URL, got %q", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %v", c.Timeout)
	}
	switch c.Form.Confirmation {
	case ConfirmToast, ConfirmReloadAlert:
		// valid
	default:
		return fmt.Errorf("config: form.confirmation must be %q or %q, got %q", ConfirmToast, ConfirmReloadAlert, c.Form.Confirmation)
	}
	if c.Form.Confirmation == ConfirmToast && c.Form.ToastDuration <= 0 {
		return fmt.Errorf("config: form.toast_duration must be positive, got %v", c.Form.ToastDuration)
	}
	if c.Analytics.APISecret != "" && c.Analytics.CollectURL == "" {
		return errors.New("config: analytics.collect_url cannot be empty when analytics.api_secret is set")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// A .env file in the working directory is loaded first; variables already
// present in the environment win over it.
// Supported variables: SIGNUP_ENDPOINT, SIGNUP_TIMEOUT, SIGNUP_REQUIRE_EMAIL,
// SIGNUP_GA_MEASUREMENT_ID, SIGNUP_GA_API_SECRET, SIGNUP_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: loading .env: %w", err)
	}

	if v := os.Getenv("SIGNUP_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("SIGNUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid SIGNUP_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("SIGNUP_REQUIRE_EMAIL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid SIGNUP_REQUIRE_EMAIL %q: %w", v, err)
		}
		c.Form.RequireEmail = b
	}
	if v := os.Getenv("SIGNUP_GA_MEASUREMENT_ID"); v != "" {
		c.Analytics.MeasurementID = v
	}
	if v := os.Getenv("SIGNUP_GA_API_SECRET"); v != "" {
		c.Analytics.APISecret = v
	}
	if v := os.Getenv("SIGNUP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Endpoint  *string        `yaml:"endpoint"`
	Timeout   *time.Duration `yaml:"timeout"`
	Form      *rawForm       `yaml:"form"`
	Analytics *rawAnalytics  `yaml:"analytics"`
	Log       *rawLog        `yaml:"log"`
}

type rawForm struct {
	AllowSpaceInName *bool          `yaml:"allow_space_in_name"`
	RequireEmail     *bool          `yaml:"require_email"`
	BlurTouches      *bool          `yaml:"blur_touches"`
	TrimName         *bool          `yaml:"trim_name"`
	TruncatePhone    *bool          `yaml:"truncate_phone"`
	Confirmation     *string        `yaml:"confirmation"`
	ToastDuration    *time.Duration `yaml:"toast_duration"`
}

type rawAnalytics struct {
	MeasurementID *string `yaml:"measurement_id"`
	APISecret     *string `yaml:"api_secret"`
	CollectURL    *string `yaml:"collect_url"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Endpoint != nil {
		c.Endpoint = *layer.Endpoint
	}
	if layer.Timeout != nil {
		c.Timeout = *layer.Timeout
	}
	if f := layer.Form; f != nil {
		if f.AllowSpaceInName != nil {
			c.Form.AllowSpaceInName = *f.AllowSpaceInName
		}
		if f.RequireEmail != nil {
			c.Form.RequireEmail = *f.RequireEmail
		}
		if f.BlurTouches != nil {
			c.Form.BlurTouches = *f.BlurTouches
		}
		if f.TrimName != nil {
			c.Form.TrimName = *f.TrimName
		}
		if f.TruncatePhone != nil {
			c.Form.TruncatePhone = *f.TruncatePhone
		}
		if f.Confirmation != nil {
			c.Form.Confirmation = *f.Confirmation
		}
		if f.ToastDuration != nil {
			c.Form.ToastDuration = *f.ToastDuration
		}
	}
	if a := layer.Analytics; a != nil {
		if a.MeasurementID != nil {
			c.Analytics.MeasurementID = *a.MeasurementID
		}
		if a.APISecret != nil {
			c.Analytics.APISecret = *a.APISecret
		}
		if a.CollectURL != nil {
			c.Analytics.CollectURL = *a.CollectURL
		}
	}
	if l := layer.Log; l != nil {
		if l.Level != nil {
			c.Log.Level = *l.Level
		}
		if l.File != nil {
			c.Log.File = *l.File
		}
	}
}
