package remote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blocktree/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// sqlMirror is the shared implementation for MySQL and Postgres.
type sqlMirror struct {
	driverName string
	db         *sql.DB
}

func newSQLMirror(driverName, dsn string) (*sqlMirror, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// Sensible pool settings for a desktop app
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlMirror{driverName: driverName, db: db}, nil
}

func (m *sqlMirror) Test(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.db.PingContext(ctx)
}

// placeholder returns the bind marker for position n (1-based).
func (m *sqlMirror) placeholder(n int) string {
	if m.driverName == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const mirrorTableDDL = `CREATE TABLE IF NOT EXISTS blocktree_blocks (
	id VARCHAR(64) PRIMARY KEY,
	parent_id VARCHAR(64) NOT NULL,
	sort_order INT NOT NULL,
	block_type VARCHAR(32) NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

func (m *sqlMirror) ensureTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mirrorTableDDL); err != nil {
		return fmt.Errorf("create mirror table: %w", err)
	}
	return nil
}

func (m *sqlMirror) Push(ctx context.Context, blocks []domain.Block) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin push: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM blocktree_blocks"); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO blocktree_blocks (id, parent_id, sort_order, block_type, content, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s)",
		m.placeholder(1), m.placeholder(2), m.placeholder(3), m.placeholder(4),
		m.placeholder(5), m.placeholder(6), m.placeholder(7),
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare push: %w", err)
	}
	defer stmt.Close()

	for _, b := range blocks {
		if _, err := stmt.ExecContext(ctx, b.ID, b.ParentID, b.Order, string(b.Type), b.Content, b.CreatedAt, b.UpdatedAt); err != nil {
			return fmt.Errorf("push block %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit push: %w", err)
	}
	return nil
}

func (m *sqlMirror) Pull(ctx context.Context) ([]domain.Block, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		"SELECT id, parent_id, sort_order, block_type, content, created_at, updated_at FROM blocktree_blocks ORDER BY parent_id, sort_order")
	if err != nil {
		return nil, fmt.Errorf("pull blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		var b domain.Block
		var typ string
		if err := rows.Scan(&b.ID, &b.ParentID, &b.Order, &typ, &b.Content, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Type = domain.BlockType(typ)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (m *sqlMirror) Close() error {
	return m.db.Close()
}

// buildPostgresDSN constructs a Postgres connection string from a MirrorConfig.
func buildPostgresDSN(cfg *domain.MirrorConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode,
	)
}

// buildMySQLDSN constructs a MySQL DSN from a MirrorConfig.
func buildMySQLDSN(cfg *domain.MirrorConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database,
	)
	if cfg.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
