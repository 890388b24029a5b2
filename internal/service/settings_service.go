package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"blocktree/internal/engine"
	"blocktree/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings — engine tuning and window size persistence
// ─────────────────────────────────────────────────────────────
//
// Stored in SQLite as key-value rows in app_settings. Engine settings
// live under one JSON key so partial overrides round-trip exactly.

// EngineSettings are the user-tunable knobs for the drag engine.
// Pointer fields distinguish "unset, use default" from explicit zero.
type EngineSettings struct {
	ActivationDistance *float64 `json:"activationDistance,omitempty"`
	LongPressDelayMs   *int     `json:"longPressDelayMs,omitempty"`
	HapticFeedback     *bool    `json:"hapticFeedback,omitempty"`
	PreviewDebounceMs  int      `json:"previewDebounceMs,omitempty"`
	ShowDropPreview    bool     `json:"showDropPreview"`
	MultiSelect        bool     `json:"multiSelect"`
	// Animation is consumed by the frontend only (drop transitions).
	Animation    bool `json:"animation"`
	MaxUndoSteps int  `json:"maxUndoSteps,omitempty"`
}

// SensorOverrides converts the persisted knobs into engine overrides.
func (e EngineSettings) SensorOverrides() *engine.SensorOverrides {
	o := &engine.SensorOverrides{}
	if e.ActivationDistance != nil {
		o.ActivationDistance = e.ActivationDistance
	}
	if e.LongPressDelayMs != nil {
		d := time.Duration(*e.LongPressDelayMs) * time.Millisecond
		o.LongPressDelay = &d
	}
	if e.HapticFeedback != nil {
		o.HapticFeedback = e.HapticFeedback
	}
	return o
}

// PreviewDebounce returns the debounce interval, 0 meaning default.
func (e EngineSettings) PreviewDebounce() time.Duration {
	return time.Duration(e.PreviewDebounceMs) * time.Millisecond
}

// DefaultEngineSettings returns the out-of-box configuration.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		ShowDropPreview: true,
		MultiSelect:     true,
		Animation:       true,
	}
}

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsService persists engine settings and window size.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingEngine       = "engine_settings"
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
)

// LoadEngineSettings returns the saved engine settings, or defaults.
func (s *SettingsService) LoadEngineSettings() EngineSettings {
	settings := DefaultEngineSettings()
	if s.db == nil {
		return settings
	}
	var raw string
	row := s.db.Conn().QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingEngine)
	if row.Scan(&raw) != nil {
		return settings
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultEngineSettings()
	}
	return settings
}

// SaveEngineSettings persists the engine settings as one JSON value.
func (s *SettingsService) SaveEngineSettings(settings EngineSettings) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal engine settings: %w", err)
	}
	return upsertSetting(s.db.Conn(), settingEngine, string(data))
}

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.db == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	conn := s.db.Conn()

	w := defaultWindowWidth
	h := defaultWindowHeight
	row := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingWindowWidth)
	row.Scan(&w)
	row = conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, settingWindowHeight)
	row.Scan(&h)

	if w < 800 {
		w = defaultWindowWidth
	}
	if h < 600 {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	conn := s.db.Conn()
	if err := upsertSetting(conn, settingWindowWidth, width); err != nil {
		return err
	}
	return upsertSetting(conn, settingWindowHeight, height)
}

func upsertSetting(conn *sql.DB, key string, value any) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
