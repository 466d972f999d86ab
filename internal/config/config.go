// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/mimicry/internal/humanoid"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Generator() GeneratorConfig
	Humanoid() humanoid.Config

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserExecPath(string)

	// Generator Setters
	SetGeneratorDefaultCountry(string)
	SetGeneratorBatchConcurrency(int)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	BrowserCfg   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	GeneratorCfg GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	HumanoidCfg  humanoid.Config `mapstructure:"humanoid" yaml:"humanoid"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig       { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig     { return c.BrowserCfg }
func (c *Config) Generator() GeneratorConfig { return c.GeneratorCfg }
func (c *Config) Humanoid() humanoid.Config  { return c.HumanoidCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)           { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserExecPath(p string)         { c.BrowserCfg.ExecPath = p }
func (c *Config) SetGeneratorBatchConcurrency(n int) { c.GeneratorCfg.BatchConcurrency = n }
func (c *Config) SetGeneratorDefaultCountry(cc string) {
	c.GeneratorCfg.DefaultCountry = strings.ToUpper(cc)
}

// LoggerConfig holds the logging configuration.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
	Format      string      `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" validate:"gte=0"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
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

// BrowserConfig configures the Chrome instance sessions are driven in.
type BrowserConfig struct {
	Headless  bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath  string   `mapstructure:"exec_path" yaml:"exec_path"`
	NoSandbox bool     `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	Args      []string `mapstructure:"args" yaml:"args"`
	// InputRate caps dispatched input events per second; InputBurst is the
	// bucket size.
	InputRate     float64       `mapstructure:"input_rate" yaml:"input_rate" validate:"gt=0"`
	InputBurst    int           `mapstructure:"input_burst" yaml:"input_burst" validate:"gte=1"`
	ActionTimeout time.Duration `mapstructure:"action_timeout" yaml:"action_timeout" validate:"gt=0"`
	NavTimeout    time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout" validate:"gt=0"`
}

// GeneratorConfig configures fingerprint generation.
type GeneratorConfig struct {
	MaxAttempts      int    `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1,lte=20"`
	BatchConcurrency int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency" validate:"gte=1"`
	DefaultCountry   string `mapstructure:"default_country" yaml:"default_country" validate:"iso3166_1_alpha2"`
}

// NewDefaultConfig creates a configuration populated with default values.
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

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "mimicry")
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
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.input_rate", 250.0)
	v.SetDefault("browser.input_burst", 20)
	v.SetDefault("browser.action_timeout", "10s")
	v.SetDefault("browser.navigation_timeout", "90s")

	// -- Generator --
	v.SetDefault("generator.max_attempts", 5)
	v.SetDefault("generator.batch_concurrency", 8)
	v.SetDefault("generator.default_country", "US")

	// Initialize all Humanoid defaults using the centralized function in humanoid_config.go.
	setHumanoidDefaults(v)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.GeneratorCfg.DefaultCountry = strings.ToUpper(cfg.GeneratorCfg.DefaultCountry)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := validateHumanoid(c.HumanoidCfg); err != nil {
		return fmt.Errorf("humanoid configuration invalid: %w", err)
	}
	return nil
}
