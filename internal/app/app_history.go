package app

import "blocktree/internal/domain"

// ============================================================
// Undo / Redo
// ============================================================

// Undo steps back one committed mutation. Returns the restored block
// list, or nil when there is nothing to undo.
func (a *App) Undo() []domain.Block {
	blocks, ok := a.tree.Undo(a.ctx)
	if !ok {
		return nil
	}
	return blocks
}

// Redo re-applies the last undone mutation.
func (a *App) Redo() []domain.Block {
	blocks, ok := a.tree.Redo(a.ctx)
	if !ok {
		return nil
	}
	return blocks
}

func (a *App) CanUndo() bool { return a.tree.CanUndo() }
func (a *App) CanRedo() bool { return a.tree.CanRedo() }
