package engine_test

import (
	"reflect"
	"testing"

	"blocktree/internal/domain"
	"blocktree/internal/engine"
)

func snap(ids ...string) []domain.Block {
	out := make([]domain.Block, len(ids))
	for i, id := range ids {
		out[i] = domain.Block{ID: id, Order: i, Type: domain.BlockTypeText}
	}
	return out
}

func TestHistory_MaxStepsBound(t *testing.T) {
	const maxSteps = 2
	h := engine.NewHistory(snap("1"), maxSteps)

	h.Set(snap("1", "2"))
	h.Set(snap("1", "2", "3"))
	h.Set(snap("1", "2", "3", "4"))

	// Exactly maxSteps undos succeed, then canUndo is false.
	for i := 0; i < maxSteps; i++ {
		if !h.Undo() {
			t.Fatalf("undo %d should succeed", i+1)
		}
	}
	if h.CanUndo() {
		t.Fatal("expected canUndo false after exhausting depth")
	}
	if h.Undo() {
		t.Fatal("expected undo past depth to be a no-op")
	}
}

func TestHistory_ThreeSetsDepthTwo(t *testing.T) {
	h := engine.NewHistory(snap("1"), 2)

	h.Set(snap("a"))
	h.Set(snap("b"))
	h.Set(snap("c"))

	if !h.Undo() {
		t.Fatal("first undo should succeed")
	}
	if !h.Undo() {
		t.Fatal("second undo should succeed")
	}
	if h.CanUndo() {
		t.Fatal("expected canUndo false after two undos with maxSteps=2")
	}
	if got := h.Blocks(); got[0].ID != "a" {
		t.Fatalf("expected cursor at snapshot a, got %s", got[0].ID)
	}
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h := engine.NewHistory(snap("1"), 10)
	h.Set(snap("1", "2"))

	before := h.Blocks()
	if !h.Undo() {
		t.Fatal("undo should succeed")
	}
	if !h.Redo() {
		t.Fatal("redo should succeed")
	}
	if !reflect.DeepEqual(h.Blocks(), before) {
		t.Fatal("undo+redo did not restore the exact blocks value")
	}
}

func TestHistory_SetTruncatesRedoTail(t *testing.T) {
	h := engine.NewHistory(snap("1"), 10)
	h.Set(snap("a"))
	h.Set(snap("b"))

	h.Undo()
	h.Set(snap("c"))

	if h.CanRedo() {
		t.Fatal("expected redo tail truncated after Set")
	}
	if got := h.Blocks(); got[0].ID != "c" {
		t.Fatalf("expected cursor at c, got %s", got[0].ID)
	}
	h.Undo()
	if got := h.Blocks(); got[0].ID != "a" {
		t.Fatalf("expected undo to land on a, got %s", got[0].ID)
	}
}

func TestHistory_RedoWithoutUndoNoop(t *testing.T) {
	h := engine.NewHistory(snap("1"), 5)
	if h.CanRedo() {
		t.Fatal("fresh history should not allow redo")
	}
	if h.Redo() {
		t.Fatal("redo without undo should be a no-op")
	}
}

func TestHistory_SnapshotsAreIsolated(t *testing.T) {
	blocks := snap("1", "2")
	h := engine.NewHistory(blocks, 5)

	// Mutating the caller's slice must not leak into the stored entry.
	blocks[0].ID = "mutated"
	if got := h.Blocks(); got[0].ID != "1" {
		t.Fatalf("stored snapshot was mutated: %s", got[0].ID)
	}

	// Mutating a returned snapshot must not corrupt the history.
	out := h.Blocks()
	out[1].ID = "mutated"
	if got := h.Blocks(); got[1].ID != "2" {
		t.Fatalf("returned snapshot aliases storage: %s", got[1].ID)
	}
}
