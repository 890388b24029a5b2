package storage

import (
	"fmt"
	"time"
)

// Snapshot is one persisted history entry: a full block list taken
// after a committed mutation.
type Snapshot struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	BlocksJSON string    `json:"blocksJson"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SnapshotStore persists undo history in SQLite so it survives
// restarts. The in-memory engine history stays the live authority;
// this store is only read back on startup.
type SnapshotStore struct {
	db *DB
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load returns all snapshots oldest-first plus the current cursor id
// (empty when no history exists yet).
func (s *SnapshotStore) Load() ([]Snapshot, string, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, label, blocks_json, created_at FROM snapshots ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, "", fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.Label, &sn.BlocksJSON, &sn.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if len(snaps) == 0 {
		return nil, "", nil
	}

	var currentID string
	err = s.db.Conn().QueryRow(
		`SELECT current_snapshot_id FROM snapshot_state WHERE id = 1`,
	).Scan(&currentID)
	if err != nil {
		currentID = snaps[len(snaps)-1].ID // fallback to newest
	}
	return snaps, currentID, nil
}

// Push records a new snapshot as the current one, discarding any redo
// tail (snapshots newer than the previous cursor) and pruning over
// maxKeep from the oldest end.
func (s *SnapshotStore) Push(snapshotID, label, blocksJSON string, maxKeep int) (*Snapshot, error) {
	now := time.Now()

	// Drop the redo tail: anything created after the current cursor.
	var currentID string
	if s.db.Conn().QueryRow(`SELECT current_snapshot_id FROM snapshot_state WHERE id = 1`).Scan(&currentID) == nil && currentID != "" {
		s.db.Conn().Exec(
			`DELETE FROM snapshots WHERE created_at > (SELECT created_at FROM snapshots WHERE id = ?)`,
			currentID,
		)
	}

	_, err := s.db.Conn().Exec(
		`INSERT INTO snapshots (id, label, blocks_json, created_at) VALUES (?, ?, ?, ?)`,
		snapshotID, label, blocksJSON, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := s.GoTo(snapshotID); err != nil {
		return nil, fmt.Errorf("update snapshot cursor: %w", err)
	}

	s.pruneIfNeeded(maxKeep)

	return &Snapshot{ID: snapshotID, Label: label, BlocksJSON: blocksJSON, CreatedAt: now}, nil
}

// GoTo moves the current cursor. Used by undo/redo.
func (s *SnapshotStore) GoTo(snapshotID string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO snapshot_state (id, current_snapshot_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET current_snapshot_id = excluded.current_snapshot_id`,
		snapshotID,
	)
	return err
}

// Clear removes all persisted history.
func (s *SnapshotStore) Clear() error {
	_, _ = s.db.Conn().Exec(`DELETE FROM snapshot_state`)
	_, err := s.db.Conn().Exec(`DELETE FROM snapshots`)
	return err
}

// pruneIfNeeded evicts the oldest snapshots when count exceeds maxKeep.
// The cursor row is never evicted.
func (s *SnapshotStore) pruneIfNeeded(maxKeep int) {
	if maxKeep <= 0 {
		return
	}
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count)
	if count <= maxKeep {
		return
	}

	var currentID string
	s.db.Conn().QueryRow(`SELECT current_snapshot_id FROM snapshot_state WHERE id = 1`).Scan(&currentID)

	rows, err := s.db.Conn().Query(
		`SELECT id FROM snapshots ORDER BY created_at ASC LIMIT ?`, count-maxKeep,
	)
	if err != nil {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if rows.Scan(&id) == nil && id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		s.db.Conn().Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	}
}
