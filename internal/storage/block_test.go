package storage_test

import (
	"testing"
	"time"

	"blocktree/internal/domain"
	"blocktree/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBlock(id, parent string, order int) *domain.Block {
	now := time.Now()
	return &domain.Block{
		ID:        id,
		ParentID:  parent,
		Order:     order,
		Type:      domain.BlockTypeText,
		Content:   "{}",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBlockStore_CRUD(t *testing.T) {
	store := storage.NewBlockStore(newTestDB(t))

	b := sampleBlock("a", "", 0)
	if err := store.CreateBlock(b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetBlock("a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != domain.BlockTypeText || got.ParentID != "" {
		t.Errorf("got %+v", got)
	}

	got.Content = `{"text":"x"}`
	if err := store.UpdateBlock(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetBlock("a")
	if got.Content != `{"text":"x"}` {
		t.Errorf("content = %q", got.Content)
	}

	if err := store.DeleteBlock("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetBlock("a"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestBlockStore_ReplaceBlocks(t *testing.T) {
	store := storage.NewBlockStore(newTestDB(t))

	if err := store.CreateBlock(sampleBlock("old", "", 0)); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := []domain.Block{
		*sampleBlock("a", "", 0),
		*sampleBlock("b", "", 1),
		*sampleBlock("c", "a", 0),
	}
	next[0].Type = domain.BlockTypeToggle
	if err := store.ReplaceBlocks(next); err != nil {
		t.Fatalf("replace: %v", err)
	}

	blocks, err := store.ListBlocks()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	for _, b := range blocks {
		if b.ID == "old" {
			t.Error("replaced block survived")
		}
	}
}

func TestSnapshotStore_PushLoadPrune(t *testing.T) {
	store := storage.NewSnapshotStore(newTestDB(t))

	ids := []string{"s1", "s2", "s3"}
	for _, id := range ids {
		if _, err := store.Push(id, "edit", "[]", 2); err != nil {
			t.Fatalf("push %s: %v", id, err)
		}
	}

	snaps, currentID, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if currentID != "s3" {
		t.Errorf("currentID = %q, want s3", currentID)
	}
	if len(snaps) != 2 {
		t.Errorf("got %d snapshots after prune, want 2", len(snaps))
	}
	for _, sn := range snaps {
		if sn.ID == "s1" {
			t.Error("oldest snapshot should have been pruned")
		}
	}
}

func TestSnapshotStore_PushDropsRedoTail(t *testing.T) {
	store := storage.NewSnapshotStore(newTestDB(t))

	store.Push("s1", "one", "[]", 10)
	store.Push("s2", "two", "[]", 10)
	if err := store.GoTo("s1"); err != nil {
		t.Fatalf("goto: %v", err)
	}

	// Pushing from an undone position discards the tail.
	if _, err := store.Push("s3", "three", "[]", 10); err != nil {
		t.Fatalf("push: %v", err)
	}

	snaps, currentID, _ := store.Load()
	if currentID != "s3" {
		t.Errorf("currentID = %q", currentID)
	}
	for _, sn := range snaps {
		if sn.ID == "s2" {
			t.Error("redo tail snapshot should have been deleted")
		}
	}
}

func TestMirrorStore_CRUD(t *testing.T) {
	store := storage.NewMirrorStore(newTestDB(t))

	cfg := &domain.MirrorConfig{
		ID:       "m1",
		Name:     "staging",
		Driver:   domain.MirrorDriverPostgres,
		Host:     "localhost",
		Port:     5432,
		Database: "blocks",
		Username: "app",
		Password: "secret",
		Enabled:  true,
	}
	if err := store.CreateMirror(cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetMirror("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Driver != domain.MirrorDriverPostgres || got.Password != "secret" {
		t.Errorf("got %+v", got)
	}

	got.Name = "prod"
	if err := store.UpdateMirror(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetMirror("m1")
	if got.Name != "prod" {
		t.Errorf("name = %q", got.Name)
	}

	list, err := store.ListMirrors()
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d)", err, len(list))
	}

	if err := store.DeleteMirror("m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetMirror("m1"); err == nil {
		t.Error("expected error after delete")
	}
}
