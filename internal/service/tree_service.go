package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"blocktree/internal/domain"
	"blocktree/internal/engine"
	"blocktree/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Tree Service — block CRUD, persistence, and undo bookkeeping
// ─────────────────────────────────────────────────────────────

// TreeService sits between the bridges and the engine session. It owns
// persistence: every committed mutation is written to the block store
// and recorded as a snapshot, and a tree:changed event is emitted so
// the frontend re-renders.
type TreeService struct {
	mu      sync.Mutex
	session *engine.Session
	blocks  *storage.BlockStore
	snaps   *storage.SnapshotStore
	emitter EventEmitter

	maxSteps int

	// snapIDs mirrors the in-memory history so undo/redo can move the
	// persisted cursor. cursor indexes the current entry.
	snapIDs []string
	cursor  int
}

// NewTreeService creates a TreeService around an existing session.
func NewTreeService(
	session *engine.Session,
	blocks *storage.BlockStore,
	snaps *storage.SnapshotStore,
	emitter EventEmitter,
	maxSteps int,
) *TreeService {
	if maxSteps <= 0 {
		maxSteps = engine.DefaultMaxSteps
	}
	return &TreeService{
		session:  session,
		blocks:   blocks,
		snaps:    snaps,
		emitter:  emitter,
		maxSteps: maxSteps,
		snapIDs:  []string{""},
		cursor:   0,
	}
}

// Session exposes the underlying drag session to the bridges.
func (s *TreeService) Session() *engine.Session {
	return s.session
}

// RestoreHistory replays persisted snapshots into the in-memory
// history so undo depth survives restarts. Called once at startup,
// before any listener is attached to frontend state.
func (s *TreeService) RestoreHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	persisted, currentID, err := s.snaps.Load()
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}
	if len(persisted) == 0 {
		return nil
	}

	// The session's construction state occupies index 0; replayed
	// snapshots stack on top of it.
	s.snapIDs = []string{""}
	currentIdx := 0
	for _, sn := range persisted {
		var blocks []domain.Block
		if err := json.Unmarshal([]byte(sn.BlocksJSON), &blocks); err != nil {
			log.Printf("tree: skipping corrupt snapshot %s: %v", sn.ID, err)
			continue
		}
		s.session.ReplaceBlocks(blocks)
		s.snapIDs = append(s.snapIDs, sn.ID)
		if sn.ID == currentID {
			currentIdx = len(s.snapIDs) - 1
		}
	}
	if len(s.snapIDs) == 1 {
		return nil
	}
	// Keep the ID list the same length as the in-memory history, which
	// evicts from the oldest end when full.
	if over := len(s.snapIDs) - (s.maxSteps + 1); over > 0 {
		s.snapIDs = s.snapIDs[over:]
		if currentIdx -= over; currentIdx < 0 {
			currentIdx = 0
		}
	}
	if currentIdx == 0 {
		currentIdx = len(s.snapIDs) - 1 // cursor row missing, use newest
	}

	// Walk back to the persisted cursor (the user may have quit
	// mid-undo, leaving a redo tail).
	for i := len(s.snapIDs) - 1; i > currentIdx; i-- {
		s.session.Undo()
	}
	s.cursor = currentIdx
	return nil
}

// ── Queries ────────────────────────────────────────────────

// ListBlocks returns the live block list in document order.
func (s *TreeService) ListBlocks() []domain.Block {
	return s.session.Blocks()
}

// GetBlock returns a single block from the live tree.
func (s *TreeService) GetBlock(id string) (*domain.Block, error) {
	for _, b := range s.session.Blocks() {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("block not found: %s", id)
}

// ChildrenOf returns the ordered children of a parent ("" = roots).
func (s *TreeService) ChildrenOf(parentID string) []domain.Block {
	return s.session.ChildrenOf(parentID)
}

// ── Mutations ──────────────────────────────────────────────

// CreateBlock appends a new block at the end of the parent's children.
// An empty parentID creates a root block.
func (s *TreeService) CreateBlock(ctx context.Context, parentID, blockType, content string) (*domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := domain.BlockType(blockType)
	if typ == "" {
		typ = domain.BlockTypeText
	}

	blocks := s.session.Blocks()
	if parentID != "" {
		parent, ok := findBlock(blocks, parentID)
		if !ok {
			return nil, fmt.Errorf("parent not found: %s", parentID)
		}
		if !domain.DefaultContainerTypes()[parent.Type] {
			return nil, fmt.Errorf("parent %s (%s) cannot hold children", parentID, parent.Type)
		}
	}

	now := time.Now()
	b := domain.Block{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Order:     len(s.session.ChildrenOf(parentID)),
		Type:      typ,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	blocks = append(blocks, b)

	s.session.ReplaceBlocks(blocks)
	if err := s.persistLocked(ctx, "create "+string(typ)); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBlockContent replaces a block's content payload.
func (s *TreeService) UpdateBlockContent(ctx context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := s.session.Blocks()
	found := false
	for i := range blocks {
		if blocks[i].ID == id {
			blocks[i].Content = content
			blocks[i].UpdatedAt = time.Now()
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("block not found: %s", id)
	}

	s.session.ReplaceBlocks(blocks)
	return s.persistLocked(ctx, "edit block")
}

// DeleteBlock removes a block and its whole subtree, closing the gap
// in the origin sibling group.
func (s *TreeService) DeleteBlock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := s.session.Blocks()
	if _, ok := findBlock(blocks, id); !ok {
		return fmt.Errorf("block not found: %s", id)
	}

	doomed := map[string]bool{id: true}
	// Document order guarantees parents precede descendants.
	for _, b := range blocks {
		if doomed[b.ParentID] {
			doomed[b.ID] = true
		}
	}

	kept := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		if !doomed[b.ID] {
			kept = append(kept, b)
		}
	}
	renumberSiblings(kept)

	s.session.ReplaceBlocks(kept)
	return s.persistLocked(ctx, "delete block")
}

// MoveBlocks performs a programmatic move (keyboard reordering, MCP
// tools) through the same validation path as drag commits.
func (s *TreeService) MoveBlocks(ctx context.Context, ids []string, targetParentID string, targetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.session.ApplyMove(ids, targetParentID, targetIndex); err != nil {
		return err
	}
	return s.persistLocked(ctx, "move block")
}

// CommitDrag persists the result of a committed drag. The session has
// already applied the move and pushed history; this only records it.
func (s *TreeService) CommitDrag(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, "drag block")
}

// ── Undo / Redo ────────────────────────────────────────────

func (s *TreeService) Undo(ctx context.Context) ([]domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, ok := s.session.Undo()
	if !ok {
		return nil, false
	}
	if err := s.blocks.ReplaceBlocks(blocks); err != nil {
		log.Printf("tree: persist undo: %v", err)
	}
	if s.cursor > 0 {
		s.cursor--
		if id := s.snapIDs[s.cursor]; id != "" {
			if err := s.snaps.GoTo(id); err != nil {
				log.Printf("tree: move snapshot cursor: %v", err)
			}
		}
	}
	s.emitter.Emit(ctx, "tree:changed", blocks)
	return blocks, true
}

func (s *TreeService) Redo(ctx context.Context) ([]domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, ok := s.session.Redo()
	if !ok {
		return nil, false
	}
	if err := s.blocks.ReplaceBlocks(blocks); err != nil {
		log.Printf("tree: persist redo: %v", err)
	}
	if s.cursor < len(s.snapIDs)-1 {
		s.cursor++
		if id := s.snapIDs[s.cursor]; id != "" {
			if err := s.snaps.GoTo(id); err != nil {
				log.Printf("tree: move snapshot cursor: %v", err)
			}
		}
	}
	s.emitter.Emit(ctx, "tree:changed", blocks)
	return blocks, true
}

func (s *TreeService) CanUndo() bool { return s.session.CanUndo() }
func (s *TreeService) CanRedo() bool { return s.session.CanRedo() }

// ── Persistence ────────────────────────────────────────────

// persistLocked writes the live tree to the block store, records a
// snapshot, and notifies the frontend. Callers hold s.mu.
func (s *TreeService) persistLocked(ctx context.Context, label string) error {
	blocks := s.session.Blocks()

	if err := s.blocks.ReplaceBlocks(blocks); err != nil {
		return fmt.Errorf("persist blocks: %w", err)
	}

	data, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	snapID := uuid.New().String()
	if _, err := s.snaps.Push(snapID, label, string(data), s.maxSteps+1); err != nil {
		log.Printf("tree: record snapshot: %v", err)
	}

	// Mirror the in-memory history shape: truncate redo tail, append,
	// evict from the oldest end.
	s.snapIDs = append(s.snapIDs[:s.cursor+1], snapID)
	if len(s.snapIDs) > s.maxSteps+1 {
		s.snapIDs = s.snapIDs[1:]
	}
	s.cursor = len(s.snapIDs) - 1

	s.emitter.Emit(ctx, "tree:changed", blocks)
	return nil
}

func findBlock(blocks []domain.Block, id string) (domain.Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Block{}, false
}

// renumberSiblings rewrites Order so every sibling group is dense
// (0..n-1) in document order.
func renumberSiblings(blocks []domain.Block) {
	next := map[string]int{}
	for i := range blocks {
		p := blocks[i].ParentID
		blocks[i].Order = next[p]
		next[p]++
	}
}
