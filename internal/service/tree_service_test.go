package service_test

import (
	"context"
	"testing"

	"blocktree/internal/domain"
	"blocktree/internal/engine"
	"blocktree/internal/service"
	"blocktree/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// TreeService tests against an in-memory SQLite store
// ─────────────────────────────────────────────────────────────

func newTestTree(t *testing.T) (*service.TreeService, *service.MockEmitter, *storage.DB) {
	t.Helper()
	db, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	session := engine.NewSession(nil, engine.NopListener{}, engine.Options{})
	svc := service.NewTreeService(
		session,
		storage.NewBlockStore(db),
		storage.NewSnapshotStore(db),
		emitter,
		0,
	)
	return svc, emitter, db
}

func TestTreeService_CreateBlock(t *testing.T) {
	svc, emitter, _ := newTestTree(t)
	ctx := context.Background()

	b, err := svc.CreateBlock(ctx, "", "text", `{"text":"hello"}`)
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	if b.ID == "" {
		t.Error("expected generated id")
	}
	if b.Order != 0 {
		t.Errorf("first root block order = %d, want 0", b.Order)
	}

	b2, err := svc.CreateBlock(ctx, "", "heading", "{}")
	if err != nil {
		t.Fatalf("create second block: %v", err)
	}
	if b2.Order != 1 {
		t.Errorf("second root block order = %d, want 1", b2.Order)
	}

	if len(svc.ListBlocks()) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(svc.ListBlocks()))
	}
	if len(emitter.Events) != 2 {
		t.Errorf("expected 2 tree:changed events, got %d", len(emitter.Events))
	}
	for _, e := range emitter.Events {
		if e.Event != "tree:changed" {
			t.Errorf("unexpected event %q", e.Event)
		}
	}
}

func TestTreeService_CreateBlock_RejectsNonContainerParent(t *testing.T) {
	svc, _, _ := newTestTree(t)
	ctx := context.Background()

	div, err := svc.CreateBlock(ctx, "", "divider", "{}")
	if err != nil {
		t.Fatalf("create divider: %v", err)
	}
	if _, err := svc.CreateBlock(ctx, div.ID, "text", "{}"); err == nil {
		t.Error("expected error creating child under a divider")
	}
	if _, err := svc.CreateBlock(ctx, "nope", "text", "{}"); err == nil {
		t.Error("expected error for unknown parent")
	}
}

func TestTreeService_UpdateBlockContent(t *testing.T) {
	svc, _, _ := newTestTree(t)
	ctx := context.Background()

	b, _ := svc.CreateBlock(ctx, "", "text", "{}")
	if err := svc.UpdateBlockContent(ctx, b.ID, `{"text":"edited"}`); err != nil {
		t.Fatalf("update content: %v", err)
	}
	got, err := svc.GetBlock(b.ID)
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if got.Content != `{"text":"edited"}` {
		t.Errorf("content = %q", got.Content)
	}

	if err := svc.UpdateBlockContent(ctx, "missing", "{}"); err == nil {
		t.Error("expected error for unknown block")
	}
}

func TestTreeService_DeleteBlock_RemovesSubtreeAndRenumbers(t *testing.T) {
	svc, _, _ := newTestTree(t)
	ctx := context.Background()

	a, _ := svc.CreateBlock(ctx, "", "toggle", "{}")
	b, _ := svc.CreateBlock(ctx, "", "text", "{}")
	c, _ := svc.CreateBlock(ctx, "", "text", "{}")
	child, _ := svc.CreateBlock(ctx, a.ID, "text", "{}")
	grandchild, _ := svc.CreateBlock(ctx, a.ID, "todo", "{}")
	_ = grandchild

	if err := svc.DeleteBlock(ctx, a.ID); err != nil {
		t.Fatalf("delete block: %v", err)
	}

	blocks := svc.ListBlocks()
	for _, blk := range blocks {
		if blk.ID == a.ID || blk.ID == child.ID {
			t.Errorf("block %s should have been deleted", blk.ID)
		}
	}
	roots := svc.ChildrenOf("")
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != b.ID || roots[0].Order != 0 {
		t.Errorf("roots[0] = %s order %d", roots[0].ID, roots[0].Order)
	}
	if roots[1].ID != c.ID || roots[1].Order != 1 {
		t.Errorf("roots[1] = %s order %d", roots[1].ID, roots[1].Order)
	}
}

func TestTreeService_MoveBlocks(t *testing.T) {
	svc, _, _ := newTestTree(t)
	ctx := context.Background()

	a, _ := svc.CreateBlock(ctx, "", "text", "{}")
	b, _ := svc.CreateBlock(ctx, "", "text", "{}")

	if err := svc.MoveBlocks(ctx, []string{b.ID}, "", 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	roots := svc.ChildrenOf("")
	if roots[0].ID != b.ID || roots[1].ID != a.ID {
		t.Errorf("order after move = [%s %s], want [%s %s]", roots[0].ID, roots[1].ID, b.ID, a.ID)
	}

	// Invalid moves surface the engine's typed errors.
	if err := svc.MoveBlocks(ctx, []string{a.ID}, "ghost", 0); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestTreeService_UndoRedoPersists(t *testing.T) {
	svc, _, db := newTestTree(t)
	ctx := context.Background()

	a, _ := svc.CreateBlock(ctx, "", "text", "{}")
	_, _ = svc.CreateBlock(ctx, "", "text", "{}")

	if !svc.CanUndo() {
		t.Fatal("expected undo to be available")
	}
	blocks, ok := svc.Undo(ctx)
	if !ok {
		t.Fatal("undo failed")
	}
	if len(blocks) != 1 || blocks[0].ID != a.ID {
		t.Fatalf("after undo got %d blocks", len(blocks))
	}

	// The store reflects the undone state.
	stored, err := storage.NewBlockStore(db).ListBlocks()
	if err != nil {
		t.Fatalf("list stored blocks: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored blocks = %d, want 1", len(stored))
	}

	redone, ok := svc.Redo(ctx)
	if !ok {
		t.Fatal("redo failed")
	}
	if len(redone) != 2 {
		t.Errorf("after redo got %d blocks, want 2", len(redone))
	}
}

func TestTreeService_RestoreHistory(t *testing.T) {
	db, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	defer db.Close()

	blockStore := storage.NewBlockStore(db)
	snapStore := storage.NewSnapshotStore(db)
	emitter := &service.MockEmitter{}
	ctx := context.Background()

	first := service.NewTreeService(
		engine.NewSession(nil, engine.NopListener{}, engine.Options{}),
		blockStore, snapStore, emitter, 0,
	)
	a, _ := first.CreateBlock(ctx, "", "text", "{}")
	_, _ = first.CreateBlock(ctx, "", "heading", "{}")

	// Simulate a restart: new session seeded from the stored blocks.
	stored, err := blockStore.ListBlocks()
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	second := service.NewTreeService(
		engine.NewSession(stored, engine.NopListener{}, engine.Options{}),
		blockStore, snapStore, emitter, 0,
	)
	if err := second.RestoreHistory(); err != nil {
		t.Fatalf("restore history: %v", err)
	}

	if !second.CanUndo() {
		t.Fatal("expected undo depth to survive restart")
	}
	blocks, ok := second.Undo(ctx)
	if !ok {
		t.Fatal("undo after restore failed")
	}
	if len(blocks) != 1 || blocks[0].ID != a.ID {
		t.Errorf("after restored undo got %d blocks", len(blocks))
	}
}

func TestTreeService_GetBlock(t *testing.T) {
	svc, _, _ := newTestTree(t)
	ctx := context.Background()

	b, _ := svc.CreateBlock(ctx, "", "quote", `{"text":"q"}`)
	got, err := svc.GetBlock(b.ID)
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if got.Type != domain.BlockTypeQuote {
		t.Errorf("type = %s", got.Type)
	}
	if _, err := svc.GetBlock("missing"); err == nil {
		t.Error("expected error for unknown id")
	}
}
