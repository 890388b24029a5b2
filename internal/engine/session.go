package engine

import (
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"

	"blocktree/internal/domain"
)

// State is the drag session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// DropZone is a registered insertion point: a labeled rect that
// resolves to (parent, index) when dropped on.
type DropZone struct {
	ID       string      `json:"id"`
	ParentID string      `json:"parentId"`
	Index    int         `json:"index"`
	Rect     domain.Rect `json:"rect"`
}

// PreviewPosition is the tentative insertion point shown while
// dragging.
type PreviewPosition struct {
	ZoneID   string `json:"zoneId"`
	ParentID string `json:"parentId"`
	Index    int    `json:"index"`
}

// CancelReason explains a non-committed drag end.
type CancelReason string

const (
	CancelNoZone    CancelReason = "no-zone"
	CancelSignal    CancelReason = "cancelled"
	CancelMoveError CancelReason = "move-rejected"
)

// DragStart is delivered once when a session enters Dragging.
type DragStart struct {
	BlockID     string       `json:"blockId"`
	SelectedIDs []string     `json:"selectedIds"`
	Pointer     domain.Point `json:"pointer"`
}

// DragUpdate carries the debounced preview and the active zone.
type DragUpdate struct {
	ActiveZoneID string           `json:"activeZoneId"`
	Preview      *PreviewPosition `json:"preview,omitempty"`
	Pointer      domain.Point     `json:"pointer"`
}

// DragEnd reports the outcome of a drag: the committed tree, or a
// cancellation reason. Err holds the move rejection when Reason is
// CancelMoveError.
type DragEnd struct {
	Committed bool           `json:"committed"`
	Reason    CancelReason   `json:"reason,omitempty"`
	Blocks    []domain.Block `json:"blocks,omitempty"`
	Err       error          `json:"-"`
}

// Listener is the engine-side half of the framework bridge: every
// binding (Wails frontend, headless MCP) consumes the session through
// these callbacks and never reaches into session state.
type Listener interface {
	DragStarted(DragStart)
	DragMoved(DragUpdate)
	DragEnded(DragEnd)
	SelectionChanged(ids []string)

	// HapticRequested fires on the transition into Dragging when the
	// sensor config enables haptics. Performing the vibration is the
	// bridge's job; a binding without the capability ignores it.
	HapticRequested()
}

// NopListener discards every notification. Used by headless bindings
// that only drive the session through programmatic operations.
type NopListener struct{}

func (NopListener) DragStarted(DragStart)     {}
func (NopListener) DragMoved(DragUpdate)      {}
func (NopListener) DragEnded(DragEnd)         {}
func (NopListener) SelectionChanged([]string) {}
func (NopListener) HapticRequested()          {}

// Options tunes a session. Zero values fall back to defaults.
type Options struct {
	Sensor          *SensorOverrides
	PreviewDebounce time.Duration
	ShowDropPreview bool
	MultiSelect     bool
	Collision       CollisionFunc
	CanDrag         func(domain.Block) bool
	Containers      domain.ContainerTypes
	MaxSteps        int
}

// DefaultPreviewDebounce bounds preview recomputation cost on rapid
// pointer jitter. It delays preview display only, never the zone
// resolution used on drop.
const DefaultPreviewDebounce = 25 * time.Millisecond

// Session owns one drag gesture lifecycle plus the committed tree and
// its history. All methods are safe for concurrent use; timer callbacks
// re-check the generation counter so a cancelled gesture can never
// fire stale transitions.
type Session struct {
	mu       sync.Mutex
	listener Listener

	cfg             SensorConfig
	previewDebounce time.Duration
	showPreview     bool
	multiSelect     bool
	collide         CollisionFunc
	canDrag         func(domain.Block) bool
	containers      domain.ContainerTypes

	tree    *Tree
	history *History

	droppables []DropZone
	exclusions map[string]domain.Rect

	state       State
	gen         uint64 // bumped on every arm/disarm; guards timer callbacks
	draggedID   string
	dragIDs     []string
	selection   []string
	downPoint   domain.Point
	pointer     domain.Point
	hasPointer  bool
	activeZone  string
	hasZone     bool
	longPress   *time.Timer
	debouncedFn func(func())
}

// NewSession creates a session over an initial block list.
func NewSession(initial []domain.Block, listener Listener, opts Options) *Session {
	cfg := ResolveSensorConfig(opts.Sensor)
	dbInterval := opts.PreviewDebounce
	if dbInterval <= 0 {
		dbInterval = DefaultPreviewDebounce
	}
	collide := opts.Collision
	if collide == nil {
		collide = PointWithin
	}
	canDrag := opts.CanDrag
	if canDrag == nil {
		canDrag = func(domain.Block) bool { return true }
	}
	containers := opts.Containers
	if containers == nil {
		containers = domain.DefaultContainerTypes()
	}

	return &Session{
		listener:        listener,
		cfg:             cfg,
		previewDebounce: dbInterval,
		showPreview:     opts.ShowDropPreview,
		multiSelect:     opts.MultiSelect,
		collide:         collide,
		canDrag:         canDrag,
		containers:      containers,
		tree:            NewTree(initial),
		history:         NewHistory(initial, opts.MaxSteps),
		exclusions:      map[string]domain.Rect{},
		debouncedFn:     debounce.New(dbInterval),
	}
}

// SetSensorConfig applies a new activation policy. Takes effect on the
// next gesture; an in-flight gesture keeps the config it started with.
func (s *Session) SetSensorConfig(o *SensorOverrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = ResolveSensorConfig(o)
}

// Config returns the currently resolved sensor config.
func (s *Session) Config() SensorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Blocks returns the committed tree as a flat list.
func (s *Session) Blocks() []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Blocks()
}

// ChildrenOf returns the ordered children of a parent in the committed
// tree.
func (s *Session) ChildrenOf(parentID string) []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.ChildrenOf(parentID)
}

// ── Droppables & exclusions ────────────────────────────────

// RegisterDroppable adds or refreshes a drop zone. Re-registering an
// id moves it to the most-recent position, which is also its collision
// tie-break rank.
func (s *Session) RegisterDroppable(z DropZone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.droppables {
		if d.ID == z.ID {
			s.droppables = append(s.droppables[:i], s.droppables[i+1:]...)
			break
		}
	}
	s.droppables = append(s.droppables, z)
}

// UnregisterDroppable removes a drop zone (unmounted element).
func (s *Session) UnregisterDroppable(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.droppables {
		if d.ID == id {
			s.droppables = append(s.droppables[:i], s.droppables[i+1:]...)
			return
		}
	}
}

// ClearDroppables drops the whole registry (layout teardown).
func (s *Session) ClearDroppables() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.droppables = nil
}

// RegisterExclusion marks a region where pointer-down never arms a
// drag (e.g. inline buttons inside a block).
func (s *Session) RegisterExclusion(id string, r domain.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exclusions[id] = r
}

// UnregisterExclusion removes an exclusion region.
func (s *Session) UnregisterExclusion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.exclusions, id)
}

// ── Selection ──────────────────────────────────────────────

// SetSelection replaces the click selection. Ignored while a gesture
// is in flight so the moved set cannot change mid-drag.
func (s *Session) SetSelection(ids []string) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.selection = append([]string(nil), ids...)
	sel := append([]string(nil), s.selection...)
	s.mu.Unlock()
	s.listener.SelectionChanged(sel)
}

// Selection returns the current click selection.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selection...)
}

// ── Pointer stream ─────────────────────────────────────────

// PointerDown arms a drag on blockID. Ignored when a session is
// already armed or dragging, when the block fails the canDrag
// predicate, or when the pointer is inside (or within activation
// distance of) an exclusion zone.
func (s *Session) PointerDown(blockID string, p domain.Point) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	b, ok := s.tree.Get(blockID)
	if !ok || !s.canDrag(b) {
		s.mu.Unlock()
		return
	}
	for _, r := range s.exclusions {
		if distanceToRect(p, r) < s.cfg.ActivationDistance {
			s.mu.Unlock()
			return
		}
	}

	s.state = StateArmed
	s.gen++
	gen := s.gen
	s.draggedID = blockID
	s.downPoint = p
	s.pointer = p
	s.hasPointer = true

	// Long-press promotes a stationary press straight to Dragging.
	if s.cfg.LongPressDelay > 0 {
		s.longPress = time.AfterFunc(s.cfg.LongPressDelay, func() {
			s.mu.Lock()
			if s.gen != gen || s.state != StateArmed {
				s.mu.Unlock()
				return
			}
			if dist(s.pointer, s.downPoint) <= s.cfg.ActivationDistance {
				s.startDraggingLocked()
				return // startDraggingLocked unlocks
			}
			s.mu.Unlock()
		})
	}
	s.mu.Unlock()
}

// PointerMove feeds one pointer sample into the session.
func (s *Session) PointerMove(p domain.Point) {
	s.mu.Lock()
	switch s.state {
	case StateArmed:
		s.pointer = p
		if dist(p, s.downPoint) > s.cfg.ActivationDistance {
			s.startDraggingLocked()
			return // unlocks
		}
		s.mu.Unlock()
	case StateDragging:
		s.pointer = p
		s.resolveZoneLocked()
		update := s.buildUpdateLocked()
		gen := s.gen
		s.mu.Unlock()
		// Display is debounced; the zone kept above stays authoritative
		// for the drop regardless of whether this ever fires.
		s.debouncedFn(func() {
			s.mu.Lock()
			stale := s.gen != gen || s.state != StateDragging
			s.mu.Unlock()
			if !stale {
				s.listener.DragMoved(update)
			}
		})
	default:
		s.mu.Unlock()
	}
}

// PointerUp releases the gesture: below the activation threshold it is
// a click and nothing happens; while dragging it commits to the active
// zone or cancels.
func (s *Session) PointerUp() {
	s.mu.Lock()
	switch s.state {
	case StateArmed:
		s.disarmLocked()
		s.mu.Unlock()
	case StateDragging:
		s.finishLocked()
	default:
		s.mu.Unlock()
	}
}

// Cancel aborts the gesture from any state, leaving the tree
// unchanged. Safe to call on escape, pointer-cancel, or unmount.
func (s *Session) Cancel() {
	s.mu.Lock()
	switch s.state {
	case StateArmed:
		s.disarmLocked()
		s.mu.Unlock()
	case StateDragging:
		s.disarmLocked()
		s.mu.Unlock()
		s.listener.DragEnded(DragEnd{Reason: CancelSignal})
	default:
		s.mu.Unlock()
	}
}

// ── Tree mutation outside a gesture ────────────────────────

// ApplyMove performs a programmatic move (keyboard reorder, MCP tool)
// through the same validation and history path as a drop.
func (s *Session) ApplyMove(ids []string, targetParentID string, targetIndex int) ([]domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := MoveBlocks(s.tree, ids, targetParentID, targetIndex, s.containers)
	if err != nil {
		return nil, err
	}
	s.tree = next
	blocks := next.Blocks()
	s.history.Set(blocks)
	return blocks, nil
}

// ReplaceBlocks swaps in an externally mutated tree (block CRUD) and
// records it as a history entry.
func (s *Session) ReplaceBlocks(blocks []domain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = NewTree(blocks)
	s.history.Set(blocks)
}

// ── History ────────────────────────────────────────────────

func (s *Session) Undo() ([]domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Undo() {
		return nil, false
	}
	blocks := s.history.Blocks()
	s.tree = NewTree(blocks)
	return blocks, true
}

func (s *Session) Redo() ([]domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.Redo() {
		return nil, false
	}
	blocks := s.history.Blocks()
	s.tree = NewTree(blocks)
	return blocks, true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// ── internals ──────────────────────────────────────────────

// startDraggingLocked transitions Armed→Dragging. Called with the lock
// held; unlocks before invoking the listener.
func (s *Session) startDraggingLocked() {
	if s.longPress != nil {
		s.longPress.Stop()
		s.longPress = nil
	}
	s.state = StateDragging

	s.dragIDs = []string{s.draggedID}
	if s.multiSelect && len(s.selection) > 0 && contains(s.selection, s.draggedID) {
		s.dragIDs = append([]string(nil), s.selection...)
	}

	s.resolveZoneLocked()
	start := DragStart{
		BlockID:     s.draggedID,
		SelectedIDs: append([]string(nil), s.dragIDs...),
		Pointer:     s.pointer,
	}
	haptic := s.cfg.HapticFeedback
	s.mu.Unlock()

	s.listener.DragStarted(start)
	if haptic {
		s.listener.HapticRequested()
	}
}

// resolveZoneLocked runs collision detection for the current pointer
// and stores the top-ranked zone. Zones without a measurable rect are
// excluded before detection.
func (s *Session) resolveZoneLocked() {
	s.hasZone = false
	s.activeZone = ""
	if !s.hasPointer {
		return
	}
	candidates := make([]Candidate, 0, len(s.droppables))
	for _, z := range s.droppables {
		if z.Rect.Width <= 0 || z.Rect.Height <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{ID: z.ID, Rect: z.Rect})
	}
	if len(candidates) == 0 {
		return
	}
	matches := s.collide(domain.RectAt(s.pointer), candidates)
	if len(matches) == 0 {
		return
	}
	s.activeZone = matches[0].ID
	s.hasZone = true
}

func (s *Session) buildUpdateLocked() DragUpdate {
	update := DragUpdate{ActiveZoneID: s.activeZone, Pointer: s.pointer}
	if s.showPreview && s.hasZone {
		if z, ok := s.zoneLocked(s.activeZone); ok {
			update.Preview = &PreviewPosition{ZoneID: z.ID, ParentID: z.ParentID, Index: z.Index}
		}
	}
	return update
}

func (s *Session) zoneLocked(id string) (DropZone, bool) {
	for _, z := range s.droppables {
		if z.ID == id {
			return z, true
		}
	}
	return DropZone{}, false
}

// finishLocked commits the drop. Called with the lock held in
// Dragging; unlocks before invoking the listener.
func (s *Session) finishLocked() {
	zone, ok := DropZone{}, false
	if s.hasZone {
		zone, ok = s.zoneLocked(s.activeZone)
	}
	if !ok {
		s.disarmLocked()
		s.mu.Unlock()
		s.listener.DragEnded(DragEnd{Reason: CancelNoZone})
		return
	}

	// Zones resolve to an insertion point when registered; a negative
	// index here means the registering bridge is inconsistent.
	if zone.Index < 0 {
		s.disarmLocked()
		s.mu.Unlock()
		s.listener.DragEnded(DragEnd{
			Reason: CancelMoveError,
			Err:    &InvalidIndexError{Index: zone.Index, Count: len(s.tree.ChildrenOf(zone.ParentID))},
		})
		return
	}

	ids := s.dragIDs
	next, err := MoveBlocks(s.tree, ids, zone.ParentID, zone.Index, s.containers)
	if err != nil {
		s.disarmLocked()
		s.mu.Unlock()
		s.listener.DragEnded(DragEnd{Reason: CancelMoveError, Err: err})
		return
	}

	s.tree = next
	blocks := next.Blocks()
	s.history.Set(blocks)
	s.disarmLocked()
	s.mu.Unlock()
	s.listener.DragEnded(DragEnd{Committed: true, Blocks: blocks})
}

// disarmLocked resets gesture state and cancels pending timers. The
// generation bump invalidates any long-press or debounce callback
// still in flight.
func (s *Session) disarmLocked() {
	if s.longPress != nil {
		s.longPress.Stop()
		s.longPress = nil
	}
	s.gen++
	s.state = StateIdle
	s.draggedID = ""
	s.dragIDs = nil
	s.activeZone = ""
	s.hasZone = false
	s.hasPointer = false
}

func dist(a, b domain.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// distanceToRect is the Euclidean distance from p to the nearest edge
// of r; zero when p is inside.
func distanceToRect(p domain.Point, r domain.Rect) float64 {
	dx := math.Max(math.Max(r.X-p.X, 0), p.X-(r.X+r.Width))
	dy := math.Max(math.Max(r.Y-p.Y, 0), p.Y-(r.Y+r.Height))
	return math.Hypot(dx, dy)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
