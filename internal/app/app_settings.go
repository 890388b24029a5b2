package app

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocktree/internal/service"
)

// ============================================================
// Settings
// ============================================================

// GetEngineSettings returns the persisted engine configuration.
func (a *App) GetEngineSettings() service.EngineSettings {
	return a.settings.LoadEngineSettings()
}

// SaveEngineSettings persists new engine settings and applies the
// sensor portion immediately. Session-shape options (multi-select,
// undo depth) take effect on next launch.
func (a *App) SaveEngineSettings(settings service.EngineSettings) error {
	if err := a.settings.SaveEngineSettings(settings); err != nil {
		return err
	}
	a.session.SetSensorConfig(settings.SensorOverrides())
	wailsRuntime.EventsEmit(a.ctx, "settings:changed", settings)
	return nil
}

// SaveWindowSize persists the window dimensions on resize.
func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}
