package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"blocktree/internal/engine"
	mcpserver "blocktree/internal/mcp"
	"blocktree/internal/service"
	"blocktree/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with
// no GUI. It shares the database with the desktop app; the desktop's
// tree watcher picks up any mutations made here.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "blocktree")
	dbPath := filepath.Join(dataDir, "blocktree.db")

	db, err := storage.New(dbPath, dataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	blockStore := storage.NewBlockStore(db)
	snapStore := storage.NewSnapshotStore(db)
	mirrorStore := storage.NewMirrorStore(db)

	settings := service.NewSettingsService(db)
	engineSettings := settings.LoadEngineSettings()

	initial, err := blockStore.ListBlocks()
	if err != nil {
		log.Fatalf("Failed to load blocks: %v", err)
	}

	// No pointer here; the session only serves programmatic operations.
	session := engine.NewSession(initial, engine.NopListener{}, engine.Options{
		MaxSteps: engineSettings.MaxUndoSteps,
	})

	emitter := noopEmitter{}
	treeSvc := service.NewTreeService(session, blockStore, snapStore, emitter, engineSettings.MaxUndoSteps)
	if err := treeSvc.RestoreHistory(); err != nil {
		log.Printf("Failed to restore undo history: %v", err)
	}
	syncSvc := service.NewSyncService(mirrorStore, treeSvc, emitter)

	srv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter: emitter,
		Tree:    treeSvc,
		Sync:    syncSvc,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Printf("MCP server: %v", err)
		}
	}
}
