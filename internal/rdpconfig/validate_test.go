package rdpconfig

import "testing"

func TestValidateTieredMaxSessionsClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.MaxSessions = 0 // below minimum 1
	result := cfg.ValidateTiered()

	if result.HasFatals() {
		t.Fatalf("clamped max_sessions should be warning, not fatal: %v", result.Fatals)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for clamped max_sessions")
	}
	if cfg.MaxSessions != 1 {
		t.Fatalf("MaxSessions = %d, want 1 (clamped)", cfg.MaxSessions)
	}
}

func TestValidateTieredUnknownConsentModeIsFatal(t *testing.T) {
	cfg := Default()
	cfg.ConsentMode = "yolo"
	result := cfg.ValidateTiered()

	if !result.HasFatals() {
		t.Fatal("unknown consent_mode should be fatal")
	}
}

func TestValidateTieredUnknownLogLevelIsFatal(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()

	if !result.HasFatals() {
		t.Fatal("unknown log_level should be fatal")
	}
}

func TestValidateTieredDefaultsAreClean(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()

	if result.HasFatals() {
		t.Fatalf("defaults should never be fatal: %v", result.Fatals)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("defaults should never warn: %v", result.Warnings)
	}
}
