package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

// FileStore implements domain.Store over a directory of CSV exports.
// Reload swaps the snapshot atomically; readers never see a partial load.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	ds     *domain.Dataset
	logger *slog.Logger
}

// New loads the exports from cfg.Dir and returns a ready store.
func New(cfg domain.DataConfig, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	ds, err := Load(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	ds.Generation = 1

	logger.Info("dataset loaded",
		"dir", cfg.Dir,
		"transactions", len(ds.Transactions),
		"customers_clv", len(ds.CLV),
		"churn_predictions", len(ds.ChurnPredictions),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &FileStore{dir: cfg.Dir, ds: ds, logger: logger}, nil
}

// Snapshot returns the current dataset.
func (s *FileStore) Snapshot() *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Reload re-reads the exports. The previous snapshot stays active when
// any file fails to load.
func (s *FileStore) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	ds, err := Load(s.dir)
	if err != nil {
		s.logger.Error("dataset reload failed", "dir", s.dir, "error", err)
		return fmt.Errorf("failed to reload dataset: %w", err)
	}

	s.mu.Lock()
	ds.Generation = s.ds.Generation + 1
	s.ds = ds
	gen := ds.Generation
	s.mu.Unlock()

	s.logger.Info("dataset reloaded",
		"generation", gen,
		"transactions", len(ds.Transactions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close implements domain.Store. Nothing to release for file-backed data.
func (s *FileStore) Close() error {
	return nil
}
