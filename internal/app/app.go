package app

import (
	"context"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocktree/internal/engine"
	"blocktree/internal/service"
	"blocktree/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db       *storage.DB
	blocks   *storage.BlockStore
	session  *engine.Session
	tree     *service.TreeService
	sync     *service.SyncService
	settings *service.SettingsService

	watcher         *treeWatcher
	settingsWatcher *settingsWatcher
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "blocktree")
	dbPath := filepath.Join(dataDir, "blocktree.db")

	db, err := storage.New(dbPath, dataDir)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db

	blockStore := storage.NewBlockStore(db)
	a.blocks = blockStore
	snapStore := storage.NewSnapshotStore(db)
	mirrorStore := storage.NewMirrorStore(db)

	a.settings = service.NewSettingsService(db)
	engineSettings := a.settings.LoadEngineSettings()

	size := a.settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)

	initial, err := blockStore.ListBlocks()
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to load blocks: %v", err)
	}

	// The App is the session listener: engine notifications become
	// Wails events the frontend subscribes to.
	a.session = engine.NewSession(initial, a, engine.Options{
		Sensor:          engineSettings.SensorOverrides(),
		PreviewDebounce: engineSettings.PreviewDebounce(),
		ShowDropPreview: engineSettings.ShowDropPreview,
		MultiSelect:     engineSettings.MultiSelect,
		MaxSteps:        engineSettings.MaxUndoSteps,
	})

	a.tree = service.NewTreeService(a.session, blockStore, snapStore, a, engineSettings.MaxUndoSteps)
	if err := a.tree.RestoreHistory(); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to restore undo history: %v", err)
	}

	a.sync = service.NewSyncService(mirrorStore, a.tree, a)
	a.sync.RestartSchedules(ctx)

	// External writers (MCP standalone, mirror imports) bypass the
	// Wails event path; the watcher picks their commits up.
	a.watcher = newTreeWatcher(ctx, a)
	a.watcher.Start()

	a.settingsWatcher = newSettingsWatcher(ctx, a, filepath.Join(dataDir, "engine.json"))
	a.settingsWatcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.settingsWatcher != nil {
		a.settingsWatcher.Stop()
	}
	if a.sync != nil {
		a.sync.StopSchedules()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Emit implements service.EventEmitter by delegating to the Wails runtime.
func (a *App) Emit(_ context.Context, event string, data any) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, event, data)
}

// ============================================================
// engine.Listener — session notifications → Wails events
// ============================================================

func (a *App) DragStarted(start engine.DragStart) {
	wailsRuntime.EventsEmit(a.ctx, "drag:started", start)
}

func (a *App) DragMoved(update engine.DragUpdate) {
	wailsRuntime.EventsEmit(a.ctx, "drag:moved", update)
}

func (a *App) DragEnded(end engine.DragEnd) {
	wailsRuntime.EventsEmit(a.ctx, "drag:ended", end)
	if !end.Committed {
		return
	}
	// Persist off the gesture path so a slow disk never delays the
	// drop animation.
	go func() {
		if err := a.tree.CommitDrag(a.ctx); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "Failed to persist drop: %v", err)
		}
		a.sync.PushAll(a.ctx)
	}()
}

func (a *App) SelectionChanged(ids []string) {
	wailsRuntime.EventsEmit(a.ctx, "selection:changed", ids)
}

func (a *App) HapticRequested() {
	wailsRuntime.EventsEmit(a.ctx, "drag:haptic", nil)
}
