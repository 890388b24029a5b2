package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerMirrorTools() {
	// ── list_mirrors ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_mirrors",
		mcp.WithDescription("List configured remote mirrors"),
	), s.handleListMirrors)

	// ── push_mirror ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("push_mirror",
		mcp.WithDescription("Replicate the current tree to a remote mirror now"),
		mcp.WithString("mirrorId", mcp.Description("Mirror ID"), mcp.Required()),
	), s.handlePushMirror)
}

func (s *Server) handleListMirrors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mirrors, err := s.sync.ListMirrors()
	if err != nil {
		return nil, err
	}

	type mirrorSummary struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Driver   string `json:"driver"`
		Schedule string `json:"schedule,omitempty"`
		Enabled  bool   `json:"enabled"`
	}
	summaries := make([]mirrorSummary, 0, len(mirrors))
	for _, m := range mirrors {
		summaries = append(summaries, mirrorSummary{
			ID:       m.ID,
			Name:     m.Name,
			Driver:   string(m.Driver),
			Schedule: m.Schedule,
			Enabled:  m.Enabled,
		})
	}
	return jsonResult(summaries)
}

func (s *Server) handlePushMirror(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	mirrorID, _ := args["mirrorId"].(string)
	if mirrorID == "" {
		return nil, fmt.Errorf("mirrorId is required")
	}

	if err := s.sync.PushMirror(ctx, mirrorID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Pushed tree to mirror %s", mirrorID)), nil
}
