package app

import "blocktree/internal/domain"

// TreeNode is the nested frontend view of a block and its children.
type TreeNode struct {
	Block    domain.Block `json:"block"`
	Children []TreeNode   `json:"children"`
}

// MirrorView is the frontend-safe view of a mirror config (no password).
type MirrorView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	SSLMode  string `json:"sslMode"`
	Schedule string `json:"schedule"`
	Enabled  bool   `json:"enabled"`
}

func mirrorView(c *domain.MirrorConfig) MirrorView {
	return MirrorView{
		ID:       c.ID,
		Name:     c.Name,
		Driver:   string(c.Driver),
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		SSLMode:  c.SSLMode,
		Schedule: c.Schedule,
		Enabled:  c.Enabled,
	}
}
