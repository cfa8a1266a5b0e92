// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Interact InteractConfig `mapstructure:"interact" yaml:"interact"`
	Fixtures FixturesConfig `mapstructure:"fixtures" yaml:"fixtures"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome process backing a page session.
type BrowserConfig struct {
	Headless     bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath     string   `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir  string   `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	Args         []string `mapstructure:"args" yaml:"args"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	// LaunchTimeout bounds the start of the browser process and its first tab.
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	// Debug forwards chromedp's protocol-level log output to the logger.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// InteractConfig tunes the wait semantics of the interaction helpers.
type InteractConfig struct {
	DefaultTimeout    time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// FixturesConfig configures the static fixture site server.
type FixturesConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Root serves fixtures from disk instead of the embedded site when set.
	Root string `mapstructure:"root" yaml:"root"`
	// Metrics mounts the Prometheus handler at /metrics.
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper unmarshals, normalizes and validates the configuration
// held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "pagewait")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 800)
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.debug", false)

	// -- Interact --
	v.SetDefault("interact.default_timeout", "10s")
	v.SetDefault("interact.poll_interval", "100ms")
	v.SetDefault("interact.navigation_timeout", "30s")

	// -- Fixtures --
	v.SetDefault("fixtures.addr", ":8000")
	v.SetDefault("fixtures.root", "")
	v.SetDefault("fixtures.metrics", true)
}

// ExpandPaths resolves a leading "~" in every filesystem path of the config.
func (c *Config) ExpandPaths() error {
	paths := []*string{&c.Browser.ExecPath, &c.Browser.UserDataDir, &c.Fixtures.Root, &c.Logger.LogFile}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for values that would make the helpers misbehave.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Interact.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Browser.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Fixtures.Addr) == "" {
		errs = append(errs, errors.New("fixtures.addr must not be empty"))
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}

// Validate checks the interaction timing settings.
func (ic InteractConfig) Validate() error {
	if ic.DefaultTimeout <= 0 {
		return errors.New("interact.default_timeout must be a positive duration")
	}
	if ic.PollInterval <= 0 {
		return errors.New("interact.poll_interval must be a positive duration")
	}
	if ic.PollInterval >= ic.DefaultTimeout {
		return fmt.Errorf("interact.poll_interval (%v) must be shorter than interact.default_timeout (%v)", ic.PollInterval, ic.DefaultTimeout)
	}
	if ic.NavigationTimeout <= 0 {
		return errors.New("interact.navigation_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the browser window and launch settings.
func (bc BrowserConfig) Validate() error {
	if bc.WindowWidth <= 0 || bc.WindowHeight <= 0 {
		return fmt.Errorf("browser window size must be positive, got %dx%d", bc.WindowWidth, bc.WindowHeight)
	}
	if bc.LaunchTimeout <= 0 {
		return errors.New("browser.launch_timeout must be a positive duration")
	}
	return nil
}
