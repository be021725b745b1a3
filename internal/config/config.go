// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	LinkedIn LinkedInConfig `mapstructure:"linkedin" yaml:"linkedin"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the Chrome process launched for each invocation.
type BrowserConfig struct {
	Headless   bool     `mapstructure:"headless" yaml:"headless"`
	ChromePath string   `mapstructure:"chrome_path" yaml:"chrome_path"`
	UserAgent  string   `mapstructure:"user_agent" yaml:"user_agent"`
	Args       []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig holds the timeouts and pacing knobs for page interaction.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// MarkerProbeTimeout bounds the initial "am I already logged in" probe.
	MarkerProbeTimeout time.Duration `mapstructure:"marker_probe_timeout" yaml:"marker_probe_timeout"`
	// LoginTimeout is generous to absorb 2FA / challenge latency.
	LoginTimeout time.Duration `mapstructure:"login_timeout" yaml:"login_timeout"`
	// RenderSettle is the bounded pause after scroll steps and load-more clicks,
	// used only where the page exposes no reliable readiness signal.
	RenderSettle time.Duration `mapstructure:"render_settle" yaml:"render_settle"`
	ScrollStep   int           `mapstructure:"scroll_step" yaml:"scroll_step"`
	// ActionsPerSecond feeds the rate limiter that paces scroll/click rounds.
	ActionsPerSecond float64 `mapstructure:"actions_per_second" yaml:"actions_per_second"`
}

// LinkedInConfig carries the fallback credentials. Explicit tool parameters
// always take priority over these.
type LinkedInConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// AIConfig configures the generative model used for profile extraction and
// content generation.
type AIConfig struct {
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
}

// ServerConfig configures the tool-server HTTP listener.
type ServerConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
	// MaxInvocations bounds concurrent browser invocations. Each invocation
	// owns a full Chrome process, so keep this small.
	MaxInvocations int `mapstructure:"max_invocations" yaml:"max_invocations"`
}

// DatabaseConfig enables the optional run archive when URL is set.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// SessionConfig controls the persisted browser-session state.
type SessionConfig struct {
	// StatePath overrides the default ~/.linkscout/linkedin-state.json.
	StatePath string `mapstructure:"state_path" yaml:"state_path"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "linkscout")
	v.SetDefault("logger.log_file", "linkscout.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36")

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.marker_probe_timeout", "8s")
	v.SetDefault("network.login_timeout", "60s")
	v.SetDefault("network.render_settle", "1500ms")
	v.SetDefault("network.scroll_step", 500)
	v.SetDefault("network.actions_per_second", 1.0)

	// -- AI --
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.api_timeout", "60s")

	// -- Server --
	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.max_invocations", 2)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Credentials and the AI key are sensitive; bind them to env vars so they
	// never need to live in the config file.
	v.BindEnv("linkedin.username", "LINKEDIN_USERNAME")
	v.BindEnv("linkedin.password", "LINKEDIN_PASSWORD")
	v.BindEnv("ai.api_key", "GOOGLE_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Server.MaxInvocations <= 0 {
		return fmt.Errorf("server.max_invocations must be a positive integer")
	}
	if c.Network.ScrollStep <= 0 {
		return fmt.Errorf("network.scroll_step must be a positive integer")
	}
	if c.Network.ActionsPerSecond <= 0 {
		return fmt.Errorf("network.actions_per_second must be positive")
	}
	if c.Network.MarkerProbeTimeout <= 0 || c.Network.LoginTimeout <= 0 {
		return fmt.Errorf("network probe and login timeouts must be positive durations")
	}
	return nil
}

// BindFlags wires the standard viper env handling for the process.
func BindFlags(v *viper.Viper) {
	v.SetEnvPrefix("LINKSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
