package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "linkscout", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 8*time.Second, cfg.Network.MarkerProbeTimeout)
	assert.Equal(t, 60*time.Second, cfg.Network.LoginTimeout)
	assert.Equal(t, 500, cfg.Network.ScrollStep)
	assert.Equal(t, 2, cfg.Server.MaxInvocations)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)

	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper_EnvCredentials(t *testing.T) {
	t.Setenv("LINKEDIN_USERNAME", "user@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "hunter2")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", cfg.LinkedIn.Username)
	assert.Equal(t, "hunter2", cfg.LinkedIn.Password)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max invocations",
			mutate:  func(c *Config) { c.Server.MaxInvocations = 0 },
			wantErr: "max_invocations",
		},
		{
			name:    "negative scroll step",
			mutate:  func(c *Config) { c.Network.ScrollStep = -1 },
			wantErr: "scroll_step",
		},
		{
			name:    "zero rate",
			mutate:  func(c *Config) { c.Network.ActionsPerSecond = 0 },
			wantErr: "actions_per_second",
		},
		{
			name:    "zero login timeout",
			mutate:  func(c *Config) { c.Network.LoginTimeout = 0 },
			wantErr: "timeouts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
