package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── blocktree://tree ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"blocktree://tree",
		"Block Tree",
		mcp.WithMIMEType("application/json"),
	), s.handleTreeResource)

	// ── blocktree://block/{blockId} ────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"blocktree://block/{blockId}",
			"Single Block",
		),
		s.handleBlockResource,
	)
}

func (s *Server) handleTreeResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.buildTree(""), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "blocktree://tree",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBlockResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	blockID := strings.TrimPrefix(uri, "blocktree://block/")
	if blockID == "" || blockID == uri {
		return nil, fmt.Errorf("invalid block URI: %s", uri)
	}

	block, err := s.tree.GetBlock(blockID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
