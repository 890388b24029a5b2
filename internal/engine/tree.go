package engine

import (
	"sort"

	"blocktree/internal/domain"
)

// Tree is an immutable view over an ordered forest of blocks: an
// id→block map plus a derived parent→children index. The index is
// rebuilt whenever a new Tree is constructed — it is never patched
// independently of the block list.
type Tree struct {
	byID     map[string]domain.Block
	children map[string][]string // parentID → child IDs sorted by Order
}

// NewTree builds a Tree from a flat block list. Sibling ties on Order
// are broken by input position, never dropped.
func NewTree(blocks []domain.Block) *Tree {
	t := &Tree{
		byID:     make(map[string]domain.Block, len(blocks)),
		children: make(map[string][]string),
	}
	for _, b := range blocks {
		t.byID[b.ID] = b
		t.children[b.ParentID] = append(t.children[b.ParentID], b.ID)
	}
	for parentID, ids := range t.children {
		sort.SliceStable(ids, func(i, j int) bool {
			return t.byID[ids[i]].Order < t.byID[ids[j]].Order
		})
		t.children[parentID] = ids
	}
	return t
}

// Get returns the block with the given id.
func (t *Tree) Get(id string) (domain.Block, bool) {
	b, ok := t.byID[id]
	return b, ok
}

// Len returns the number of blocks in the tree.
func (t *Tree) Len() int {
	return len(t.byID)
}

// ChildrenOf returns the ordered children of parentID (empty string
// for root-level blocks).
func (t *Tree) ChildrenOf(parentID string) []domain.Block {
	ids := t.children[parentID]
	out := make([]domain.Block, len(ids))
	for i, id := range ids {
		out[i] = t.byID[id]
	}
	return out
}

// Blocks returns all blocks in depth-first order starting from the
// root. Deterministic for equal input, so snapshots compare stably.
func (t *Tree) Blocks() []domain.Block {
	out := make([]domain.Block, 0, len(t.byID))
	var walk func(parentID string)
	walk = func(parentID string) {
		for _, id := range t.children[parentID] {
			out = append(out, t.byID[id])
			walk(id)
		}
	}
	walk("")
	return out
}

// IsAncestor reports whether ancestorID is id itself or a transitive
// parent of id. The walk is bounded by the node count so a corrupted
// parent chain cannot loop forever.
func (t *Tree) IsAncestor(ancestorID, id string) bool {
	cur := id
	for steps := 0; steps <= len(t.byID); steps++ {
		if cur == ancestorID {
			return true
		}
		b, ok := t.byID[cur]
		if !ok || b.ParentID == "" {
			return false
		}
		cur = b.ParentID
	}
	return false
}
