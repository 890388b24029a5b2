package app

import (
	"blocktree/internal/domain"
)

// ============================================================
// Block Tree
// ============================================================

// ListBlocks returns the flat block list in document order.
func (a *App) ListBlocks() []domain.Block {
	return a.tree.ListBlocks()
}

// GetBlock returns a single block.
func (a *App) GetBlock(id string) (*domain.Block, error) {
	return a.tree.GetBlock(id)
}

// GetTree returns the blocks as a nested structure rooted at the
// top-level blocks.
func (a *App) GetTree() []TreeNode {
	return a.buildTree("")
}

func (a *App) buildTree(parentID string) []TreeNode {
	children := a.tree.ChildrenOf(parentID)
	nodes := make([]TreeNode, 0, len(children))
	for _, b := range children {
		nodes = append(nodes, TreeNode{
			Block:    b,
			Children: a.buildTree(b.ID),
		})
	}
	return nodes
}

// CreateBlock appends a block at the end of the parent's children.
func (a *App) CreateBlock(parentID, blockType, content string) (*domain.Block, error) {
	return a.tree.CreateBlock(a.ctx, parentID, blockType, content)
}

// UpdateBlockContent replaces a block's content payload.
func (a *App) UpdateBlockContent(id, content string) error {
	return a.tree.UpdateBlockContent(a.ctx, id, content)
}

// DeleteBlock removes a block and its subtree.
func (a *App) DeleteBlock(id string) error {
	return a.tree.DeleteBlock(a.ctx, id)
}

// MoveBlocks moves blocks without a drag gesture (keyboard shortcuts).
func (a *App) MoveBlocks(ids []string, targetParentID string, targetIndex int) error {
	return a.tree.MoveBlocks(a.ctx, ids, targetParentID, targetIndex)
}

// SetSelection replaces the current selection. Ignored mid-drag.
func (a *App) SetSelection(ids []string) {
	a.session.SetSelection(ids)
}

// GetSelection returns the selected block IDs.
func (a *App) GetSelection() []string {
	return a.session.Selection()
}
