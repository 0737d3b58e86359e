// Package sweepers holds periodic maintenance loops.
package sweepers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/storage"
)

// ExportSweeper periodically deletes saved exports older than a retention age
type ExportSweeper struct {
	store     storage.Storage
	logger    *zerolog.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	metrics   *metrics.Recorder
	stopChan  chan struct{}
}

// NewExportSweeper creates a sweeper over store. A zero retention disables deletion.
func NewExportSweeper(store storage.Storage, logger *zerolog.Logger, interval, retention time.Duration) *ExportSweeper {
	return &ExportSweeper{
		store:     store,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		metrics:   metrics.NewRecorder(),
		stopChan:  make(chan struct{}),
	}
}

// Start runs the sweep every interval until ctx is done or Stop is called
func (s *ExportSweeper) Start(ctx context.Context) {
	if s.retention <= 0 || s.interval <= 0 {
		s.logger.Info().Msg("Export sweeper disabled")
		return
	}

	s.logger.Info().
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Msg("Starting export sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Export sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Export sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to sweep exports")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *ExportSweeper) Stop() {
	close(s.stopChan)
}

// Sweep deletes every export created before the retention cutoff and returns
// how many were removed. Exports without metadata fall back to their
// modification time.
func (s *ExportSweeper) Sweep(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)

	keys, err := s.store.List(ctx, "exports/")
	if err != nil {
		return 0, fmt.Errorf("failed to list exports: %w", err)
	}

	deleted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		info, err := s.store.GetInfo(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to stat %s: %w", key, err)
		}

		created := info.ModifiedAt
		if info.Metadata != nil && !info.Metadata.CreatedAt.IsZero() {
			created = info.Metadata.CreatedAt
		}
		if !created.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return deleted, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.metrics.RecordExportsSwept(deleted)
		s.logger.Info().
			Int("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Swept expired exports")
	}
	return deleted, nil
}
