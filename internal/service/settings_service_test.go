package service_test

import (
	"testing"

	"blocktree/internal/service"
	"blocktree/internal/storage"
)

func newTestSettings(t *testing.T) *service.SettingsService {
	t.Helper()
	db, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return service.NewSettingsService(db)
}

func TestSettingsService_EngineDefaults(t *testing.T) {
	svc := newTestSettings(t)

	got := svc.LoadEngineSettings()
	if !got.ShowDropPreview || !got.MultiSelect {
		t.Errorf("defaults = %+v", got)
	}
	if got.ActivationDistance != nil || got.LongPressDelayMs != nil {
		t.Error("sensor overrides should start unset")
	}
}

func TestSettingsService_EngineRoundTrip(t *testing.T) {
	svc := newTestSettings(t)

	dist := 12.0
	delay := 350
	haptic := true
	in := service.EngineSettings{
		ActivationDistance: &dist,
		LongPressDelayMs:   &delay,
		HapticFeedback:     &haptic,
		PreviewDebounceMs:  50,
		ShowDropPreview:    true,
		MultiSelect:        false,
		MaxUndoSteps:       20,
	}
	if err := svc.SaveEngineSettings(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := svc.LoadEngineSettings()
	if got.ActivationDistance == nil || *got.ActivationDistance != 12.0 {
		t.Error("activation distance did not round-trip")
	}
	if got.LongPressDelayMs == nil || *got.LongPressDelayMs != 350 {
		t.Error("long press delay did not round-trip")
	}
	if got.MultiSelect {
		t.Error("explicit false should round-trip, not revert to default")
	}

	o := got.SensorOverrides()
	if o.ActivationDistance == nil || *o.ActivationDistance != 12.0 {
		t.Error("override conversion lost activation distance")
	}
	if o.LongPressDelay == nil || o.LongPressDelay.Milliseconds() != 350 {
		t.Error("override conversion lost long press delay")
	}
}

func TestSettingsService_WindowSizeClamping(t *testing.T) {
	svc := newTestSettings(t)

	size := svc.LoadWindowSize()
	if size.Width != 1280 || size.Height != 800 {
		t.Errorf("default size = %+v", size)
	}

	if err := svc.SaveWindowSize(1600, 1000); err != nil {
		t.Fatalf("save: %v", err)
	}
	size = svc.LoadWindowSize()
	if size.Width != 1600 || size.Height != 1000 {
		t.Errorf("saved size = %+v", size)
	}

	// Implausibly small values fall back to defaults.
	if err := svc.SaveWindowSize(100, 100); err != nil {
		t.Fatalf("save: %v", err)
	}
	size = svc.LoadWindowSize()
	if size.Width != 1280 || size.Height != 800 {
		t.Errorf("clamped size = %+v", size)
	}
}
