package remote

import (
	"context"
	"fmt"

	"blocktree/internal/domain"
)

// Mirror replicates the committed block tree to an external database
// so other tools can read it. The local SQLite store stays the source
// of truth; a mirror is write-through only.
type Mirror interface {
	// Test verifies connectivity.
	Test(ctx context.Context) error

	// Push replaces the mirrored block list with the given snapshot.
	Push(ctx context.Context, blocks []domain.Block) error

	// Pull reads the mirrored block list back (initial import).
	Pull(ctx context.Context) ([]domain.Block, error)

	Close() error
}

// NewMirror creates a Mirror for the given config.
func NewMirror(cfg *domain.MirrorConfig) (Mirror, error) {
	switch cfg.Driver {
	case domain.MirrorDriverMySQL:
		return newSQLMirror("mysql", buildMySQLDSN(cfg))
	case domain.MirrorDriverPostgres:
		return newSQLMirror("postgres", buildPostgresDSN(cfg))
	case domain.MirrorDriverMongoDB:
		return newMongoMirror(cfg)
	default:
		return nil, fmt.Errorf("unsupported mirror driver: %s", cfg.Driver)
	}
}
