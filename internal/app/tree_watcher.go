package app

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocktree/internal/engine"
)

// treeWatcher polls the database for changes to the block table,
// detecting external modifications (e.g. from the MCP standalone
// process) and emitting Wails events so the frontend auto-refreshes.
type treeWatcher struct {
	ctx context.Context
	app *App
	mu  sync.Mutex

	lastPrint string // blocks fingerprint (count + max updated_at)
	stopCh    chan struct{}
}

func newTreeWatcher(ctx context.Context, app *App) *treeWatcher {
	return &treeWatcher{ctx: ctx, app: app}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *treeWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *treeWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
	}
}

func (w *treeWatcher) pollLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *treeWatcher) check() {
	var count int
	var maxUpdated string
	row := w.app.db.Conn().QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM blocks`,
	)
	if err := row.Scan(&count, &maxUpdated); err != nil {
		return
	}
	print := fmt.Sprintf("%d|%s", count, maxUpdated)

	w.mu.Lock()
	changed := w.lastPrint != "" && print != w.lastPrint
	w.lastPrint = print
	w.mu.Unlock()

	if !changed {
		return
	}

	stored, err := w.app.blocks.ListBlocks()
	if err != nil {
		return
	}
	// Normalize to document order before comparing; the store sorts by
	// (parent_id, sort_order), the session walks depth-first.
	normalized := engine.NewTree(stored).Blocks()

	// Our own commits also touch the table; only external writes leave
	// the store and the live session out of sync.
	if reflect.DeepEqual(normalized, w.app.session.Blocks()) {
		return
	}

	w.app.session.ReplaceBlocks(normalized)
	wailsRuntime.EventsEmit(w.ctx, "tree:changed", normalized)
}
