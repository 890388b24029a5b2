package app

import (
	"blocktree/internal/domain"
	"blocktree/internal/service"
)

// ============================================================
// Remote Mirrors
// ============================================================

// ListMirrors returns all configured mirrors without passwords.
func (a *App) ListMirrors() ([]MirrorView, error) {
	mirrors, err := a.sync.ListMirrors()
	if err != nil {
		return nil, err
	}
	views := make([]MirrorView, 0, len(mirrors))
	for i := range mirrors {
		views = append(views, mirrorView(&mirrors[i]))
	}
	return views, nil
}

// CreateMirror adds a new mirror target.
func (a *App) CreateMirror(input service.CreateMirrorInput) (*MirrorView, error) {
	cfg, err := a.sync.CreateMirror(a.ctx, input)
	if err != nil {
		return nil, err
	}
	v := mirrorView(cfg)
	return &v, nil
}

// UpdateMirror updates a mirror. A blank password keeps the stored one.
func (a *App) UpdateMirror(id string, input service.CreateMirrorInput) error {
	return a.sync.UpdateMirror(a.ctx, id, input)
}

// DeleteMirror removes a mirror target.
func (a *App) DeleteMirror(id string) error {
	return a.sync.DeleteMirror(a.ctx, id)
}

// TestMirror verifies connectivity to a mirror.
func (a *App) TestMirror(id string) error {
	return a.sync.TestMirror(a.ctx, id)
}

// PushMirror replicates the current tree to one mirror now.
func (a *App) PushMirror(id string) error {
	return a.sync.PushMirror(a.ctx, id)
}

// ImportMirror replaces the local tree with the mirror's contents.
// Recorded as an undoable mutation.
func (a *App) ImportMirror(id string) ([]domain.Block, error) {
	return a.sync.ImportMirror(a.ctx, id)
}
