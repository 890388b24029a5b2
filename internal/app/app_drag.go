package app

import (
	"blocktree/internal/domain"
	"blocktree/internal/engine"
)

// ============================================================
// Drag Gesture
// ============================================================
//
// The frontend forwards raw pointer events here; the engine decides
// whether they become a drag. Listener callbacks flow back out as
// drag:* events.

// PointerDown reports a press on a block at canvas coordinates.
func (a *App) PointerDown(blockID string, x, y float64) {
	a.session.PointerDown(blockID, domain.Point{X: x, Y: y})
}

// PointerMove reports pointer motion.
func (a *App) PointerMove(x, y float64) {
	a.session.PointerMove(domain.Point{X: x, Y: y})
}

// PointerUp reports pointer release: a click when still armed, a drop
// when dragging.
func (a *App) PointerUp() {
	a.session.PointerUp()
}

// CancelDrag aborts the in-flight gesture (Escape key, window blur).
func (a *App) CancelDrag() {
	a.session.Cancel()
}

// DragState returns the current gesture state as a string.
func (a *App) DragState() string {
	return a.session.State().String()
}

// ── Droppable registry ─────────────────────────────────────
//
// The frontend re-registers zones whenever layout changes; rects are
// in the same coordinate space as pointer events.

// RegisterDroppable adds or updates a drop zone.
func (a *App) RegisterDroppable(id, parentID string, index int, x, y, width, height float64) {
	a.session.RegisterDroppable(engine.DropZone{
		ID:       id,
		ParentID: parentID,
		Index:    index,
		Rect:     domain.Rect{X: x, Y: y, Width: width, Height: height},
	})
}

// UnregisterDroppable removes a drop zone.
func (a *App) UnregisterDroppable(id string) {
	a.session.UnregisterDroppable(id)
}

// ClearDroppables removes every registered zone (page navigation).
func (a *App) ClearDroppables() {
	a.session.ClearDroppables()
}

// RegisterExclusion marks a region where presses never arm a drag
// (resize handles, inline toolbars).
func (a *App) RegisterExclusion(id string, x, y, width, height float64) {
	a.session.RegisterExclusion(id, domain.Rect{X: x, Y: y, Width: width, Height: height})
}

// UnregisterExclusion removes an exclusion region.
func (a *App) UnregisterExclusion(id string) {
	a.session.UnregisterExclusion(id)
}
