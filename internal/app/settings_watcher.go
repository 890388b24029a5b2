package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocktree/internal/service"
)

// settingsWatcher watches an engine.json override file next to the
// database. Power users edit it by hand; changes apply live without
// reopening the settings panel.
type settingsWatcher struct {
	ctx     context.Context
	app     *App
	path    string
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func newSettingsWatcher(ctx context.Context, app *App, path string) *settingsWatcher {
	return &settingsWatcher{ctx: ctx, app: app, path: path}
}

// Start begins watching the override file's directory. Watching the
// directory instead of the file survives editors that write-and-rename.
func (w *settingsWatcher) Start() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		wailsRuntime.LogErrorf(w.ctx, "settings watcher: %v", err)
		return
	}
	w.watcher = watcher

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		wailsRuntime.LogErrorf(w.ctx, "settings watcher: watch %q: %v", dir, err)
		watcher.Close()
		w.watcher = nil
		return
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				abs, _ := filepath.Abs(event.Name)
				want, _ := filepath.Abs(w.path)
				if abs != want {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, w.reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				wailsRuntime.LogErrorf(w.ctx, "settings watcher: %v", err)
			}
		}
	}()
}

// Stop tears the watcher down.
func (w *settingsWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
}

func (w *settingsWatcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return
	}
	var settings service.EngineSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		wailsRuntime.LogErrorf(w.ctx, "settings watcher: parse %q: %v", w.path, err)
		return
	}
	w.app.session.SetSensorConfig(settings.SensorOverrides())
	wailsRuntime.EventsEmit(w.ctx, "settings:changed", settings)
}
