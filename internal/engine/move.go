package engine

import "blocktree/internal/domain"

// MoveBlocks detaches the given blocks from their current sibling
// groups and inserts them under targetParentID at targetIndex,
// returning a new Tree. The input tree is never mutated.
//
// Rules:
//   - ids whose ancestor is also in the set are dropped — a child
//     always follows its moved parent, moving it twice would split the
//     subtree.
//   - Moved blocks keep their relative order from the input tree.
//   - targetIndex is clamped to [0, childCount] counted after the
//     moved blocks are detached.
//   - Orders in every affected sibling group are re-numbered as dense
//     integers starting at 0.
func MoveBlocks(t *Tree, ids []string, targetParentID string, targetIndex int, containers domain.ContainerTypes) (*Tree, error) {
	moved := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := t.Get(id); ok {
			moved[id] = true
		}
	}

	// Keep only the topmost moved blocks, in document order.
	var roots []string
	for _, b := range t.Blocks() {
		if !moved[b.ID] {
			continue
		}
		if p, ok := t.Get(b.ParentID); ok && isUnderMoved(t, p, moved) {
			continue
		}
		roots = append(roots, b.ID)
	}
	if len(roots) == 0 {
		return t, nil
	}

	// The root keeps accepting children; any other target must exist
	// and be a container type.
	if targetParentID != "" {
		target, ok := t.Get(targetParentID)
		if !ok || !containers[target.Type] {
			return t, &InvalidContainerError{TargetID: targetParentID, TargetType: string(target.Type)}
		}
		for _, id := range roots {
			if t.IsAncestor(id, targetParentID) {
				return t, &CycleError{BlockID: id, TargetID: targetParentID}
			}
		}
	}

	isRoot := make(map[string]bool, len(roots))
	for _, id := range roots {
		isRoot[id] = true
	}

	next := make(map[string]domain.Block, t.Len())
	for _, b := range t.Blocks() {
		next[b.ID] = b
	}

	// Rebuild the target sibling group with the moved blocks spliced in.
	var siblings []string
	for _, c := range t.ChildrenOf(targetParentID) {
		if !isRoot[c.ID] {
			siblings = append(siblings, c.ID)
		}
	}
	idx := targetIndex
	if idx < 0 {
		idx = 0
	}
	if idx > len(siblings) {
		idx = len(siblings)
	}
	reordered := make([]string, 0, len(siblings)+len(roots))
	reordered = append(reordered, siblings[:idx]...)
	reordered = append(reordered, roots...)
	reordered = append(reordered, siblings[idx:]...)
	for i, id := range reordered {
		b := next[id]
		b.Order = i
		if isRoot[id] {
			b.ParentID = targetParentID
		}
		next[id] = b
	}

	// Close the gaps at every origin group the moved blocks left.
	origins := make(map[string]bool)
	for _, id := range roots {
		b, _ := t.Get(id)
		if b.ParentID != targetParentID {
			origins[b.ParentID] = true
		}
	}
	for parentID := range origins {
		i := 0
		for _, c := range t.ChildrenOf(parentID) {
			if isRoot[c.ID] {
				continue
			}
			b := next[c.ID]
			b.Order = i
			next[c.ID] = b
			i++
		}
	}

	out := make([]domain.Block, 0, len(next))
	for _, b := range next {
		out = append(out, b)
	}
	return NewTree(out), nil
}

// isUnderMoved reports whether b or any of its ancestors is in the
// moved set.
func isUnderMoved(t *Tree, b domain.Block, moved map[string]bool) bool {
	cur := b
	for steps := 0; steps <= t.Len(); steps++ {
		if moved[cur.ID] {
			return true
		}
		if cur.ParentID == "" {
			return false
		}
		parent, ok := t.Get(cur.ParentID)
		if !ok {
			return false
		}
		cur = parent
	}
	return false
}
