package domain

import "time"

// MirrorDriver selects the backend a tree mirror replicates to.
type MirrorDriver string

const (
	MirrorDriverMySQL    MirrorDriver = "mysql"
	MirrorDriverPostgres MirrorDriver = "postgres"
	MirrorDriverMongoDB  MirrorDriver = "mongodb"
)

// MirrorConfig holds the metadata for connecting to an external
// database that receives tree replicas. Persistence of the canonical
// tree stays local; a mirror is a read replica for other tools.
type MirrorConfig struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Driver    MirrorDriver `json:"driver"`
	Host      string       `json:"host"`
	Port      int          `json:"port"`
	Database  string       `json:"database"`
	Username  string       `json:"username"`
	Password  string       `json:"password"`
	SSLMode   string       `json:"sslMode"`
	Schedule  string       `json:"schedule"` // cron expression; empty = push on commit only
	Enabled   bool         `json:"enabled"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// MirrorStore manages CRUD operations for mirror configs.
type MirrorStore interface {
	CreateMirror(c *MirrorConfig) error
	GetMirror(id string) (*MirrorConfig, error)
	ListMirrors() ([]MirrorConfig, error)
	UpdateMirror(c *MirrorConfig) error
	DeleteMirror(id string) error
}
