package rdpconfig

import "fmt"

var validConsentModes = map[string]bool{
	"auto":        true,
	"channel":     true,
	"interactive": true,
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult separates fatal config errors (which block startup) from
// warnings (which are logged but self-heal by clamping to a safe value).
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal error was recorded.
func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// ValidateTiered checks the config and clamps out-of-range numeric fields
// to a safe value, recording a warning for each clamp. Structural problems
// (an unknown mode, a level that doesn't parse) are fatal.
func (c *Config) ValidateTiered() ValidationResult {
	var result ValidationResult

	if c.MaxSessions < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("max_sessions %d is below minimum 1, clamping", c.MaxSessions))
		c.MaxSessions = 1
	} else if c.MaxSessions > 10000 {
		result.Warnings = append(result.Warnings, fmt.Errorf("max_sessions %d exceeds maximum 10000, clamping", c.MaxSessions))
		c.MaxSessions = 10000
	}

	if c.SessionQueueDepth < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("session_queue_depth %d is below minimum 1, clamping", c.SessionQueueDepth))
		c.SessionQueueDepth = 1
	}

	if c.RateLimitMaxEventsPerSec < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("rate_limit_max_events_per_sec %d is below minimum 1, clamping", c.RateLimitMaxEventsPerSec))
		c.RateLimitMaxEventsPerSec = 1
	}

	if c.RateLimitBurst < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("rate_limit_burst %d is below minimum 1, clamping", c.RateLimitBurst))
		c.RateLimitBurst = 1
	}

	if c.RateLimitWindowSeconds < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("rate_limit_window_seconds %d is below minimum 1, clamping", c.RateLimitWindowSeconds))
		c.RateLimitWindowSeconds = 1
	}

	if c.ConsentTimeoutSeconds < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("consent_timeout_seconds %d is below minimum 1, clamping", c.ConsentTimeoutSeconds))
		c.ConsentTimeoutSeconds = 1
	}

	if c.ConsentMode != "" && !validConsentModes[c.ConsentMode] {
		result.Fatals = append(result.Fatals, fmt.Errorf("consent_mode %q is not valid (use auto, channel, or interactive)", c.ConsentMode))
	}

	if c.TargetFPS < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("target_fps %d is below minimum 1, clamping", c.TargetFPS))
		c.TargetFPS = 1
	} else if c.TargetFPS > 240 {
		result.Warnings = append(result.Warnings, fmt.Errorf("target_fps %d exceeds maximum 240, clamping", c.TargetFPS))
		c.TargetFPS = 240
	}

	if c.ShmTimeoutMS < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("shm_timeout_ms %d is below minimum 1, clamping", c.ShmTimeoutMS))
		c.ShmTimeoutMS = 1
	}

	if c.ShmBufferPool < 2 {
		result.Warnings = append(result.Warnings, fmt.Errorf("shm_buffer_pool %d is below minimum 2, clamping", c.ShmBufferPool))
		c.ShmBufferPool = 2
	}

	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		result.Fatals = append(result.Fatals, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		result.Fatals = append(result.Fatals, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	return result
}
