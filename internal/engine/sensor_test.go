package engine_test

import (
	"testing"
	"time"

	"blocktree/internal/engine"
)

func TestResolveSensorConfig_Defaults(t *testing.T) {
	cfg := engine.ResolveSensorConfig(nil)
	if cfg.ActivationDistance != engine.DefaultActivationDistance {
		t.Errorf("expected default activation distance, got %v", cfg.ActivationDistance)
	}
	if cfg.LongPressDelay != engine.DefaultLongPressDelay {
		t.Errorf("expected default long-press delay, got %v", cfg.LongPressDelay)
	}
	if !cfg.HapticFeedback {
		t.Error("expected haptics enabled by default")
	}
}

func TestResolveSensorConfig_PartialOverride(t *testing.T) {
	dist := 12.0
	cfg := engine.ResolveSensorConfig(&engine.SensorOverrides{ActivationDistance: &dist})
	if cfg.ActivationDistance != 12 {
		t.Errorf("expected overridden distance 12, got %v", cfg.ActivationDistance)
	}
	// Untouched fields keep defaults.
	if cfg.LongPressDelay != engine.DefaultLongPressDelay {
		t.Errorf("expected default long-press delay, got %v", cfg.LongPressDelay)
	}
	if !cfg.HapticFeedback {
		t.Error("expected haptics still enabled")
	}
}

func TestResolveSensorConfig_FullOverride(t *testing.T) {
	dist := 0.0
	delay := 250 * time.Millisecond
	haptics := false
	cfg := engine.ResolveSensorConfig(&engine.SensorOverrides{
		ActivationDistance: &dist,
		LongPressDelay:     &delay,
		HapticFeedback:     &haptics,
	})
	if cfg.ActivationDistance != 0 {
		t.Errorf("expected zero distance accepted, got %v", cfg.ActivationDistance)
	}
	if cfg.LongPressDelay != delay {
		t.Errorf("expected 250ms delay, got %v", cfg.LongPressDelay)
	}
	if cfg.HapticFeedback {
		t.Error("expected haptics disabled")
	}
}

func TestResolveSensorConfig_NegativeIgnored(t *testing.T) {
	dist := -5.0
	delay := -time.Second
	cfg := engine.ResolveSensorConfig(&engine.SensorOverrides{
		ActivationDistance: &dist,
		LongPressDelay:     &delay,
	})
	if cfg.ActivationDistance != engine.DefaultActivationDistance {
		t.Errorf("negative distance should fall back to default, got %v", cfg.ActivationDistance)
	}
	if cfg.LongPressDelay != engine.DefaultLongPressDelay {
		t.Errorf("negative delay should fall back to default, got %v", cfg.LongPressDelay)
	}
}
