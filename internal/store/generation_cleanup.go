package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/pkg/logger"
)

const (
	// DefaultGenerationRetentionDays is how long generation rows are kept by default
	DefaultGenerationRetentionDays = 30
	// DefaultGenerationCleanupSchedule runs the pruning job daily at 3 AM
	DefaultGenerationCleanupSchedule = "0 3 * * *"
)

// GenerationCleanupService periodically prunes old generation history
type GenerationCleanupService struct {
	store         GenerationStore
	cron          *cron.Cron
	schedule      string
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewGenerationCleanupService creates a cleanup service. Empty or
// non-positive arguments fall back to the defaults.
func NewGenerationCleanupService(store GenerationStore, schedule string, retentionDays int) *GenerationCleanupService {
	if schedule == "" {
		schedule = DefaultGenerationCleanupSchedule
	}
	if retentionDays <= 0 {
		retentionDays = DefaultGenerationRetentionDays
	}

	return &GenerationCleanupService{
		store:         store,
		cron:          cron.New(),
		schedule:      schedule,
		retentionDays: retentionDays,
	}
}

// Start schedules the cleanup job and runs one pass in the background
func (s *GenerationCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule generation cleanup",
			zap.String("schedule", s.schedule),
			zap.Error(err),
		)
		return err
	}
	s.entryID = entryID

	s.cron.Start()

	logger.Info("Generation cleanup service started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
	)

	go s.cleanup()
	return nil
}

// Stop stops the cleanup service and waits for a running job
func (s *GenerationCleanupService) Stop() {
	s.mu.RLock()
	c := s.cron
	s.mu.RUnlock()

	if c != nil {
		logger.Info("Stopping generation cleanup service")
		ctx := c.Stop()
		<-ctx.Done()
		logger.Info("Generation cleanup service stopped")
	}
}

// NextRun returns when the cleanup job fires next; zero before Start
func (s *GenerationCleanupService) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// cleanup deletes generations older than the retention period
func (s *GenerationCleanupService) cleanup() {
	s.mu.RLock()
	days := s.retentionDays
	s.mu.RUnlock()

	logger.Debug("Starting generation cleanup", zap.Int("retention_days", days))

	startTime := time.Now()
	deletedCount, err := s.store.DeleteOlderThan(days)
	if err != nil {
		logger.Error("Failed to cleanup old generations",
			zap.Int("retention_days", days),
			zap.Error(err),
		)
		return
	}

	logger.Info("Generation cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("retention_days", days),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// SetRetentionDays updates the retention period (takes effect on next cleanup)
func (s *GenerationCleanupService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		days = DefaultGenerationRetentionDays
	}
	s.retentionDays = days
	logger.Info("Generation retention days updated", zap.Int("retention_days", days))
}
