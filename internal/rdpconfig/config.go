// Package rdpconfig loads and validates process configuration for the
// remote-desktop control plane.
package rdpconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds every tunable the portal, session manager, rate limiter,
// capture engine and consent gateway read at startup.
type Config struct {
	// Session manager
	MaxSessions       int `mapstructure:"max_sessions"`
	SessionQueueDepth int `mapstructure:"session_queue_depth"`

	// Rate limiter
	RateLimitMaxEventsPerSec int `mapstructure:"rate_limit_max_events_per_sec"`
	RateLimitBurst           int `mapstructure:"rate_limit_burst"`
	RateLimitWindowSeconds   int `mapstructure:"rate_limit_window_seconds"`

	// Consent gateway
	ConsentTimeoutSeconds int    `mapstructure:"consent_timeout_seconds"`
	ConsentMode           string `mapstructure:"consent_mode"` // "auto", "channel", "interactive"

	// Capture engine
	TargetFPS     int `mapstructure:"target_fps"`
	ShmTimeoutMS  int `mapstructure:"shm_timeout_ms"`
	ShmBufferPool int `mapstructure:"shm_buffer_pool"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the baseline configuration used when no file or env
// override is present.
func Default() *Config {
	return &Config{
		MaxSessions:              32,
		SessionQueueDepth:        64,
		RateLimitMaxEventsPerSec: 500,
		RateLimitBurst:           50,
		RateLimitWindowSeconds:   1,
		ConsentTimeoutSeconds:    30,
		ConsentMode:              "auto",
		TargetFPS:                30,
		ShmTimeoutMS:             100,
		ShmBufferPool:            2,
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// Load reads configuration from cfgFile (or the platform default search
// path when empty), applies RDPORTAL_-prefixed environment overrides, and
// validates the result. Fatal validation errors block startup; warnings
// are returned for the caller to log.
func Load(cfgFile string) (*Config, []error, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rdportal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RDPORTAL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, nil, err
	}

	result := cfg.ValidateTiered()
	if result.HasFatals() {
		return nil, result.Warnings, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, result.Warnings, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "BreezeRDPortal")
	case "darwin":
		return "/Library/Application Support/BreezeRDPortal"
	default:
		return "/etc/rdportal"
	}
}
