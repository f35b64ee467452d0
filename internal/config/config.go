package config

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/newsletter/internal/errors"
	"github.com/vango-dev/newsletter/pkg/subscribe"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "newsletter.json"

	// DefaultAddress is the default listen address for serve.
	DefaultAddress = "localhost:8080"

	// DefaultEndpoint is the sign-up endpoint used when none is configured.
	DefaultEndpoint = "http://localhost:8080/api/newsletter"

	// DefaultTimeout is the default per-submission timeout.
	DefaultTimeout = "10s"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "newsletter"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultTitle is the default page title.
	DefaultTitle = "Newsletter"
)

// Config represents the complete newsletter.json configuration.
type Config struct {
	// Endpoint is the URL subscriptions are posted to.
	Endpoint string `json:"endpoint,omitempty"`

	// Timeout bounds one submission, as a Go duration string.
	Timeout string `json:"timeout,omitempty"`

	// Address is the listen address for serve.
	Address string `json:"address,omitempty"`

	// Title is the page title served by serve.
	Title string `json:"title,omitempty"`

	// SuccessMessage is the confirmation shown after an accepted submission.
	SuccessMessage string `json:"successMessage,omitempty"`

	// FailureMessage is shown when a rejected submission carries no text.
	FailureMessage string `json:"failureMessage,omitempty"`

	// UseServerMessage shows the endpoint's confirmation instead of
	// SuccessMessage when it sends one.
	UseServerMessage bool `json:"useServerMessage,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes /metrics from serve. Defaults to true.
	Enabled *bool `json:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry configuration.
type TracingConfig struct {
	// TracerName names the tracer on the global provider.
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	enabled := true
	return &Config{
		Endpoint:       DefaultEndpoint,
		Timeout:        DefaultTimeout,
		Address:        DefaultAddress,
		Title:          DefaultTitle,
		SuccessMessage: subscribe.DefaultSuccessMessage,
		FailureMessage: subscribe.DefaultFailureMessage,
		LogLevel:       DefaultLogLevel,
		Metrics: MetricsConfig{
			Enabled:   &enabled,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for newsletter.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("N100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create the file or drop the --config flag to use defaults")
		}
		return nil, errors.New("N101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("N101").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is set. Otherwise it loads
// newsletter.json from the working directory if present and falls back to
// defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.New("N101").Wrap(err)
	}
	if !Exists(wd) {
		return New(), nil
	}
	return Load(wd)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("N103").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N103").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Endpoint == "" {
		c.Endpoint = defaults.Endpoint
	}
	if c.Timeout == "" {
		c.Timeout = defaults.Timeout
	}
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.Title == "" {
		c.Title = defaults.Title
	}
	if c.SuccessMessage == "" {
		c.SuccessMessage = defaults.SuccessMessage
	}
	if c.FailureMessage == "" {
		c.FailureMessage = defaults.FailureMessage
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = defaults.Metrics.Enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = defaults.Tracing.TracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("N102").
			WithDetailf("endpoint must be an absolute http(s) URL, got %q", c.Endpoint)
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return errors.New("N102").
			WithDetailf("timeout must be a positive duration, got %q", c.Timeout).
			WithSuggestion(`Use a value such as "10s" or "500ms"`)
	}

	if strings.TrimSpace(c.Address) == "" {
		return errors.New("N102").WithDetail("address must not be empty")
	}

	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return errors.New("N102").
			WithDetailf("logLevel must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// TimeoutDuration returns Timeout parsed, or the default when it is invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// MetricsEnabled reports whether serve exposes /metrics.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns LogLevel as a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
