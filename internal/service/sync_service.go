package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"blocktree/internal/domain"
	"blocktree/internal/remote"
	"blocktree/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Sync Service — replicating the tree to remote mirrors
// ─────────────────────────────────────────────────────────────

// SyncService pushes the committed block tree to configured remote
// mirrors, either on a cron schedule or on demand. Failures on one
// mirror never block the local commit path.
type SyncService struct {
	store   *storage.MirrorStore
	tree    *TreeService
	emitter EventEmitter
	running runningGuard

	cronSched *cron.Cron
}

// NewSyncService creates a SyncService ready for use.
func NewSyncService(store *storage.MirrorStore, tree *TreeService, emitter EventEmitter) *SyncService {
	return &SyncService{store: store, tree: tree, emitter: emitter}
}

// ── Mirror CRUD ────────────────────────────────────────────

type CreateMirrorInput struct {
	Name     string `json:"name"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
	Schedule string `json:"schedule"`
	Enabled  bool   `json:"enabled"`
}

func (s *SyncService) CreateMirror(ctx context.Context, input CreateMirrorInput) (*domain.MirrorConfig, error) {
	cfg := &domain.MirrorConfig{
		ID:       uuid.New().String(),
		Name:     input.Name,
		Driver:   domain.MirrorDriver(input.Driver),
		Host:     input.Host,
		Port:     input.Port,
		Database: input.Database,
		Username: input.Username,
		Password: input.Password,
		SSLMode:  input.SSLMode,
		Schedule: input.Schedule,
		Enabled:  input.Enabled,
	}
	switch cfg.Driver {
	case domain.MirrorDriverMySQL, domain.MirrorDriverPostgres, domain.MirrorDriverMongoDB:
	default:
		return nil, fmt.Errorf("unsupported mirror driver: %s", input.Driver)
	}

	if err := s.store.CreateMirror(cfg); err != nil {
		return nil, fmt.Errorf("create mirror: %w", err)
	}
	s.RestartSchedules(ctx)
	return cfg, nil
}

func (s *SyncService) GetMirror(id string) (*domain.MirrorConfig, error) {
	return s.store.GetMirror(id)
}

func (s *SyncService) ListMirrors() ([]domain.MirrorConfig, error) {
	return s.store.ListMirrors()
}

func (s *SyncService) UpdateMirror(ctx context.Context, id string, input CreateMirrorInput) error {
	cfg, err := s.store.GetMirror(id)
	if err != nil {
		return err
	}
	cfg.Name = input.Name
	cfg.Driver = domain.MirrorDriver(input.Driver)
	cfg.Host = input.Host
	cfg.Port = input.Port
	cfg.Database = input.Database
	cfg.Username = input.Username
	if input.Password != "" {
		cfg.Password = input.Password
	}
	cfg.SSLMode = input.SSLMode
	cfg.Schedule = input.Schedule
	cfg.Enabled = input.Enabled

	if err := s.store.UpdateMirror(cfg); err != nil {
		return err
	}
	s.RestartSchedules(ctx)
	return nil
}

func (s *SyncService) DeleteMirror(ctx context.Context, id string) error {
	err := s.store.DeleteMirror(id)
	if err == nil {
		s.RestartSchedules(ctx)
	}
	return err
}

// TestMirror opens a connection and pings it.
func (s *SyncService) TestMirror(ctx context.Context, id string) error {
	cfg, err := s.store.GetMirror(id)
	if err != nil {
		return err
	}
	m, err := remote.NewMirror(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Test(ctx)
}

// ── Push ───────────────────────────────────────────────────

// PushMirror replicates the current tree to a single mirror.
func (s *SyncService) PushMirror(ctx context.Context, id string) error {
	if !s.running.TryLock(id) {
		return fmt.Errorf("mirror %s is already syncing", id)
	}
	defer s.running.Unlock(id)

	cfg, err := s.store.GetMirror(id)
	if err != nil {
		return err
	}

	m, err := remote.NewMirror(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	pushCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	blocks := s.tree.ListBlocks()
	if err := m.Push(pushCtx, blocks); err != nil {
		s.emitter.Emit(ctx, "mirror:failed", map[string]string{
			"mirrorId": id,
			"error":    err.Error(),
		})
		return fmt.Errorf("push mirror %s: %w", cfg.Name, err)
	}

	s.emitter.Emit(ctx, "mirror:synced", map[string]any{
		"mirrorId": id,
		"blocks":   len(blocks),
	})
	return nil
}

// PushAll replicates the current tree to every enabled mirror.
// Used by the commit hook; errors are logged, not returned.
func (s *SyncService) PushAll(ctx context.Context) {
	mirrors, err := s.store.ListMirrors()
	if err != nil {
		log.Printf("sync: list mirrors: %v", err)
		return
	}
	for _, cfg := range mirrors {
		if !cfg.Enabled {
			continue
		}
		if err := s.PushMirror(ctx, cfg.ID); err != nil {
			log.Printf("sync: %v", err)
		}
	}
}

// ImportMirror pulls the block list from a mirror and replaces the
// local tree with it. Recorded as a normal undoable mutation.
func (s *SyncService) ImportMirror(ctx context.Context, id string) ([]domain.Block, error) {
	cfg, err := s.store.GetMirror(id)
	if err != nil {
		return nil, err
	}
	m, err := remote.NewMirror(cfg)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	pullCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	blocks, err := m.Pull(pullCtx)
	if err != nil {
		return nil, fmt.Errorf("import mirror %s: %w", cfg.Name, err)
	}

	s.tree.Session().ReplaceBlocks(blocks)
	if err := s.tree.CommitDrag(ctx); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ── Schedules ──────────────────────────────────────────────

// RestartSchedules tears down the cron scheduler and rebuilds it from
// the enabled mirrors that carry a schedule expression.
func (s *SyncService) RestartSchedules(ctx context.Context) {
	s.StopSchedules()

	mirrors, err := s.store.ListMirrors()
	if err != nil {
		log.Printf("sync scheduler: list mirrors: %v", err)
		return
	}

	var scheduled int
	c := cron.New()
	for _, cfg := range mirrors {
		if !cfg.Enabled || cfg.Schedule == "" {
			continue
		}
		mid := cfg.ID
		name := cfg.Name
		if _, err := c.AddFunc(cfg.Schedule, func() {
			log.Printf("sync cron: pushing mirror %s", name)
			if err := s.PushMirror(ctx, mid); err != nil {
				log.Printf("sync cron: mirror %s failed: %v", name, err)
			}
		}); err != nil {
			log.Printf("sync scheduler: bad schedule %q for %s: %v", cfg.Schedule, name, err)
			continue
		}
		scheduled++
	}

	if scheduled > 0 {
		c.Start()
		s.cronSched = c
		log.Printf("sync scheduler: %d mirror(s) scheduled", scheduled)
	}
}

// StopSchedules halts the scheduler if running.
func (s *SyncService) StopSchedules() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
