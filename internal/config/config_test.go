// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "rfheadless", cfg.Logger.ServiceName)
	assert.Equal(t, 30*time.Second, cfg.Script.Timeout)
	assert.True(t, cfg.Script.EnableJavaScript)
	assert.Equal(t, 100000, cfg.Script.MaxDrainIterations)
	assert.Equal(t, 1<<20, cfg.Script.MaxScriptLen)

	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("logger.level", "debug")
	v.Set("logger.format", "json")
	v.Set("script.timeout", "10s")
	v.Set("script.enable_javascript", false)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 10*time.Second, cfg.Script.Timeout)
	assert.False(t, cfg.Script.EnableJavaScript)

	// Load stores the result globally.
	assert.Equal(t, cfg, Get())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Script.Timeout = -time.Second },
			wantErr: "script.timeout",
		},
		{
			name:    "negative drain bound",
			mutate:  func(c *Config) { c.Script.MaxDrainIterations = -1 },
			wantErr: "max_drain_iterations",
		},
		{
			name:    "negative script length limit",
			mutate:  func(c *Config) { c.Script.MaxScriptLen = -1 },
			wantErr: "max_script_len",
		},
		{
			name:    "unknown logger format",
			mutate:  func(c *Config) { c.Logger.Format = "xml" },
			wantErr: "logger.format",
		},
		{
			name:   "empty logger format allowed",
			mutate: func(c *Config) { c.Logger.Format = "" },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestGetFallsBackToDefaults(t *testing.T) {
	Set(nil)
	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Logger.Level)
}
