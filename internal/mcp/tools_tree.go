package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"blocktree/internal/domain"
)

func (s *Server) registerTreeTools() {
	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks as a flat document-order list, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── get_tree ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the whole document as a nested tree of blocks"),
	), s.handleGetTree)

	// ── create_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_block",
		mcp.WithDescription("Create a new block at the end of a parent's children. Omit parentId for a top-level block."),
		mcp.WithString("type",
			mcp.Description("Block type: text, heading, todo, list, toggle, page, column, callout, quote, divider"),
			mcp.Required(),
		),
		mcp.WithString("parentId", mcp.Description("Parent block ID (optional, must be a container type)")),
		mcp.WithString("content", mcp.Description("Initial content for the block (optional)")),
	), s.handleCreateBlock)

	// ── update_block_content ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_content",
		mcp.WithDescription("Update the content of an existing block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content"), mcp.Required()),
	), s.handleUpdateBlockContent)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move blocks under a new parent at a given index. Rejects moves into non-containers or into a block's own subtree."),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs to move"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("Target parent ID (empty for top level)")),
		mcp.WithNumber("index", mcp.Description("Insertion index among the target's children (clamped)")),
	), s.handleMoveBlock)

	// ── reorder_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_block",
		mcp.WithDescription("Move a block within its current sibling group to a new index"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("New index among current siblings"), mcp.Required()),
	), s.handleReorderBlock)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block and its whole subtree"),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last committed mutation"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the last undone mutation"),
	), s.handleRedo)
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typeFilter, _ := args["type"].(string)

	blocks := s.tree.ListBlocks()
	if typeFilter != "" {
		filtered := make([]domain.Block, 0, len(blocks))
		for _, b := range blocks {
			if string(b.Type) == typeFilter {
				filtered = append(filtered, b)
			}
		}
		blocks = filtered
	}
	return jsonResult(blocks)
}

// treeNode mirrors the nested frontend view for agent consumption.
type treeNode struct {
	Block    domain.Block `json:"block"`
	Children []treeNode   `json:"children"`
}

func (s *Server) handleGetTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.buildTree(""))
}

func (s *Server) buildTree(parentID string) []treeNode {
	children := s.tree.ChildrenOf(parentID)
	nodes := make([]treeNode, 0, len(children))
	for _, b := range children {
		nodes = append(nodes, treeNode{Block: b, Children: s.buildTree(b.ID)})
	}
	return nodes
}

func (s *Server) handleCreateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockType, _ := args["type"].(string)
	if blockType == "" {
		return nil, fmt.Errorf("type is required")
	}
	parentID, _ := args["parentId"].(string)
	content, _ := args["content"].(string)

	block, err := s.tree.CreateBlock(ctx, parentID, blockType, content)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}

	s.emitTreeChanged(ctx)
	return jsonResult(block)
}

func (s *Server) handleUpdateBlockContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	content, _ := args["content"].(string)

	if err := s.tree.UpdateBlockContent(ctx, blockID, content); err != nil {
		return nil, err
	}

	s.emitTreeChanged(ctx)
	return textResult(fmt.Sprintf("Updated block %s", blockID)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(args["blockIds"])
	if len(ids) == 0 {
		return nil, fmt.Errorf("blockIds is required")
	}
	parentID, _ := args["parentId"].(string)
	index := getInt(args, "index", 0)

	if err := s.tree.MoveBlocks(ctx, ids, parentID, index); err != nil {
		return nil, fmt.Errorf("move blocks: %w", err)
	}

	s.emitTreeChanged(ctx)
	return textResult(fmt.Sprintf("Moved %d block(s)", len(ids))), nil
}

func (s *Server) handleReorderBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	block, err := s.tree.GetBlock(blockID)
	if err != nil {
		return nil, err
	}
	index := getInt(args, "index", 0)

	if err := s.tree.MoveBlocks(ctx, []string{blockID}, block.ParentID, index); err != nil {
		return nil, fmt.Errorf("reorder block: %w", err)
	}

	s.emitTreeChanged(ctx)
	return textResult(fmt.Sprintf("Reordered block %s to index %d", blockID, index)), nil
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}

	if err := s.tree.DeleteBlock(ctx, blockID); err != nil {
		return nil, err
	}

	s.emitTreeChanged(ctx)
	return textResult(fmt.Sprintf("Deleted block %s and its subtree", blockID)), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks, ok := s.tree.Undo(ctx)
	if !ok {
		return textResult("Nothing to undo"), nil
	}
	s.emitTreeChanged(ctx)
	return jsonResult(blocks)
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks, ok := s.tree.Redo(ctx)
	if !ok {
		return textResult("Nothing to redo"), nil
	}
	s.emitTreeChanged(ctx)
	return jsonResult(blocks)
}

// ── Arg helpers ────────────────────────────────────────────

func boolPtr(v bool) *bool { return &v }

func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func splitIDs(v any) []string {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
