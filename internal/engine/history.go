package engine

import "blocktree/internal/domain"

// DefaultMaxSteps bounds undo depth when the host gives no limit.
const DefaultMaxSteps = 40

// History is a bounded undo/redo stack of full tree snapshots.
// Snapshots trade memory for O(1) undo/redo cursor moves; the depth
// bound caps the cost. Eviction always happens at the oldest end,
// never on the cursor side.
type History struct {
	entries  [][]domain.Block
	cursor   int
	maxSteps int
}

// NewHistory starts a history at the given initial snapshot. With
// maxSteps = N, exactly N undos are possible after N sequential Set
// calls from the initial state.
func NewHistory(initial []domain.Block, maxSteps int) *History {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &History{
		entries:  [][]domain.Block{snapshot(initial)},
		maxSteps: maxSteps,
	}
}

// Blocks returns the snapshot at the cursor.
func (h *History) Blocks() []domain.Block {
	return snapshot(h.entries[h.cursor])
}

// Set pushes a new snapshot, discarding any redo tail. The oldest
// entry is evicted once the undo depth exceeds maxSteps.
func (h *History) Set(blocks []domain.Block) {
	h.entries = append(h.entries[:h.cursor+1], snapshot(blocks))
	h.cursor = len(h.entries) - 1
	if len(h.entries) > h.maxSteps+1 {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// Undo moves the cursor back one entry. Past the oldest entry it is a
// no-op and returns false.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one entry. Without a redo tail it is a
// no-op and returns false.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// snapshot copies a block list so later mutations by the caller can
// never leak into stored entries.
func snapshot(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	copy(out, blocks)
	return out
}
