package storage

import (
	"fmt"
	"time"

	"blocktree/internal/domain"
)

// BlockStore implements domain.BlockStore using SQLite.
type BlockStore struct {
	db *DB
}

func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

func (s *BlockStore) CreateBlock(b *domain.Block) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.Conn().Exec(
		`INSERT INTO blocks (id, parent_id, sort_order, type, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ParentID, b.Order, b.Type, b.Content, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BlockStore) GetBlock(id string) (*domain.Block, error) {
	b := &domain.Block{}
	err := s.db.Conn().QueryRow(
		`SELECT id, parent_id, sort_order, type, content, created_at, updated_at FROM blocks WHERE id = ?`, id,
	).Scan(&b.ID, &b.ParentID, &b.Order, &b.Type, &b.Content, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

// ListBlocks returns the full forest, parents-first so the engine can
// rebuild its index in one pass.
func (s *BlockStore) ListBlocks() ([]domain.Block, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, parent_id, sort_order, type, content, created_at, updated_at FROM blocks ORDER BY parent_id, sort_order`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.ID, &b.ParentID, &b.Order, &b.Type, &b.Content, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *BlockStore) UpdateBlock(b *domain.Block) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.Conn().Exec(
		`UPDATE blocks SET parent_id = ?, sort_order = ?, type = ?, content = ?, updated_at = ? WHERE id = ?`,
		b.ParentID, b.Order, b.Type, b.Content, b.UpdatedAt, b.ID,
	)
	return err
}

func (s *BlockStore) DeleteBlock(id string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM blocks WHERE id = ?`, id)
	return err
}

// ReplaceBlocks atomically replaces the whole block list.
// Used by drag commits and undo/redo to fully sync DB with a snapshot.
func (s *BlockStore) ReplaceBlocks(blocks []domain.Block) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blocks`); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}

	now := time.Now()
	for _, b := range blocks {
		created := b.CreatedAt
		if created.IsZero() {
			created = now
		}
		_, err := tx.Exec(
			`INSERT INTO blocks (id, parent_id, sort_order, type, content, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.ParentID, b.Order, b.Type, b.Content, created, now,
		)
		if err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}
