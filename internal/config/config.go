// internal/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Config is the root configuration for the engine.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Script ScriptConfig `mapstructure:"script"`
}

// LoggerConfig holds all logger settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level" yaml:"level"`
	Format      string `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// ScriptConfig holds settings for JavaScript evaluation and the scheduler.
type ScriptConfig struct {
	// Timeout bounds one synchronous script turn (wall time, not the
	// logical clock).
	Timeout time.Duration `mapstructure:"timeout"`
	// EnableJavaScript gates script evaluation entirely.
	EnableJavaScript bool `mapstructure:"enable_javascript"`
	// MaxDrainIterations bounds a single drain-until-idle cycle against
	// runaway timer chains.
	MaxDrainIterations int `mapstructure:"max_drain_iterations"`
	// MaxScriptLen rejects scripts larger than this many bytes before
	// evaluation. Zero disables the guard.
	MaxScriptLen int `mapstructure:"max_script_len"`
}

// SetDefaults registers default values so the engine runs with no config
// file at all.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "rfheadless")
	v.SetDefault("script.timeout", 30*time.Second)
	v.SetDefault("script.enable_javascript", true)
	v.SetDefault("script.max_drain_iterations", 100000)
	v.SetDefault("script.max_script_len", 1<<20)
}

// Load reads configuration from the supplied viper instance into the global
// Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Set(&cfg)
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Script.Timeout < 0 {
		return fmt.Errorf("script.timeout must not be negative, got %v", c.Script.Timeout)
	}
	if c.Script.MaxDrainIterations < 0 {
		return fmt.Errorf("script.max_drain_iterations must not be negative, got %d", c.Script.MaxDrainIterations)
	}
	if c.Script.MaxScriptLen < 0 {
		return fmt.Errorf("script.max_script_len must not be negative, got %d", c.Script.MaxScriptLen)
	}
	switch c.Logger.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}

// Default returns a ready-to-use configuration without touching the global
// viper state.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static; this cannot fail at runtime.
		panic(err)
	}
	return &cfg
}

// Set stores the configuration globally.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Get returns the stored configuration, falling back to defaults when Load
// was never called.
func Get() *Config {
	mu.RLock()
	cfg := instance
	mu.RUnlock()
	if cfg == nil {
		return Default()
	}
	return cfg
}
