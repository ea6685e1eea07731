// Package recovery settles generations that were interrupted by a restart.
// Records are not persisted, so interrupted generations are marked failed
// rather than re-run.
package recovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/logger"
)

const scanPageSize = 100

// Service marks stale pending generations as failed on startup
type Service struct {
	store      store.Store
	staleAfter time.Duration
	now        func() time.Time
}

// NewService creates a recovery service. Pending generations older than
// staleAfter are considered interrupted.
func NewService(s store.Store, staleAfter time.Duration) *Service {
	return &Service{
		store:      s,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Result summarizes one recovery pass
type Result struct {
	Scanned int
	Failed  int
	Skipped int
}

// Recover marks every stale pending generation as failed. Younger rows may
// belong to a generation still running in another process and are left alone.
func (s *Service) Recover(ctx context.Context) (Result, error) {
	var res Result
	if s.staleAfter <= 0 {
		return res, nil
	}

	stale, err := s.collectStale(ctx, &res)
	if err != nil {
		return res, err
	}

	if len(stale) == 0 {
		logger.Info("No interrupted generations to recover")
		return res, nil
	}

	logger.Info("Recovering interrupted generations",
		zap.Int("count", len(stale)),
	)

	for _, gen := range stale {
		age := s.now().Sub(gen.CreatedAt).Round(time.Minute)
		msg := fmt.Sprintf("generation interrupted: still pending after %v", age)
		if err := s.store.Generation().MarkFailed(gen.ID, string(errors.ErrCodeInterrupted), msg, 0); err != nil {
			logger.Warn("Failed to mark interrupted generation",
				zap.String(logger.FieldGenerationID, gen.ID),
				zap.Error(err),
			)
			continue
		}
		res.Failed++
		logger.Info("Generation marked as interrupted",
			zap.String(logger.FieldGenerationID, gen.ID),
			zap.String(logger.FieldRecordID, gen.RecordID),
			zap.Duration("age", age),
		)
	}

	logger.Info("Generation recovery completed",
		zap.Int("scanned", res.Scanned),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// collectStale pages through pending generations before any row is modified
func (s *Service) collectStale(ctx context.Context, res *Result) ([]model.Generation, error) {
	cutoff := s.now().Add(-s.staleAfter)
	var stale []model.Generation

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gens, total, err := s.store.Generation().List(model.GenerationQuery{
			Status:   model.GenerationStatusPending,
			Page:     page,
			PageSize: scanPageSize,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list pending generations", err)
		}

		for _, gen := range gens {
			res.Scanned++
			if gen.CreatedAt.After(cutoff) {
				res.Skipped++
				continue
			}
			stale = append(stale, gen)
		}

		if len(gens) == 0 || int64(page*scanPageSize) >= total {
			return stale, nil
		}
	}
}
