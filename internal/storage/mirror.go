package storage

import (
	"database/sql"
	"fmt"
	"time"

	"blocktree/internal/domain"
)

// MirrorStore manages mirror replica configs in SQLite.
type MirrorStore struct {
	db *DB
}

func NewMirrorStore(db *DB) *MirrorStore {
	return &MirrorStore{db: db}
}

func (s *MirrorStore) CreateMirror(c *domain.MirrorConfig) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.Conn().Exec(
		`INSERT INTO mirrors (id, name, driver, host, port, database_name, username, password, ssl_mode, schedule, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Driver, c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schedule, c.Enabled, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *MirrorStore) GetMirror(id string) (*domain.MirrorConfig, error) {
	row := s.db.Conn().QueryRow(
		`SELECT id, name, driver, host, port, database_name, username, password, ssl_mode, schedule, enabled, created_at, updated_at
		 FROM mirrors WHERE id = ?`, id,
	)
	c := &domain.MirrorConfig{}
	err := row.Scan(&c.ID, &c.Name, &c.Driver, &c.Host, &c.Port, &c.Database, &c.Username, &c.Password, &c.SSLMode, &c.Schedule, &c.Enabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mirror not found: %s", id)
	}
	return c, err
}

func (s *MirrorStore) ListMirrors() ([]domain.MirrorConfig, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, name, driver, host, port, database_name, username, password, ssl_mode, schedule, enabled, created_at, updated_at
		 FROM mirrors ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []domain.MirrorConfig
	for rows.Next() {
		var c domain.MirrorConfig
		if err := rows.Scan(&c.ID, &c.Name, &c.Driver, &c.Host, &c.Port, &c.Database, &c.Username, &c.Password, &c.SSLMode, &c.Schedule, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (s *MirrorStore) UpdateMirror(c *domain.MirrorConfig) error {
	c.UpdatedAt = time.Now()
	_, err := s.db.Conn().Exec(
		`UPDATE mirrors SET name = ?, driver = ?, host = ?, port = ?, database_name = ?, username = ?, password = ?, ssl_mode = ?, schedule = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Driver, c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schedule, c.Enabled, c.UpdatedAt, c.ID,
	)
	return err
}

func (s *MirrorStore) DeleteMirror(id string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM mirrors WHERE id = ?`, id)
	return err
}
