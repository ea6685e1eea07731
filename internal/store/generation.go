package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/verustcode/valreport/internal/model"
)

// GenerationOutcome is what a successful generation produced
type GenerationOutcome struct {
	Filename      string
	Pages         int
	SizeBytes     int64
	ImagesDropped int
	Duration      time.Duration
}

// GenerationStore defines operations for the Generation model.
type GenerationStore interface {
	Create(gen *model.Generation) error
	GetByID(id string) (*model.Generation, error)

	// Status updates
	MarkCompleted(id string, outcome GenerationOutcome) error
	MarkFailed(id, code, message string, duration time.Duration) error

	// Queries
	List(query model.GenerationQuery) ([]model.Generation, int64, error)
	LatestForRecord(recordID string) (*model.Generation, error)
	CountByStatus() (map[model.GenerationStatus]int64, error)

	// Retention
	DeleteOlderThan(days int) (int64, error)
}

// generationStore implements GenerationStore using GORM.
type generationStore struct {
	db *gorm.DB
}

func newGenerationStore(db *gorm.DB) GenerationStore {
	return &generationStore{db: db}
}

func (s *generationStore) Create(gen *model.Generation) error {
	if gen.Status == "" {
		gen.Status = model.GenerationStatusPending
	}
	return s.db.Create(gen).Error
}

func (s *generationStore) GetByID(id string) (*model.Generation, error) {
	var gen model.Generation
	if err := s.db.First(&gen, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gen, nil
}

func (s *generationStore) MarkCompleted(id string, outcome GenerationOutcome) error {
	now := time.Now()
	return s.updateOne(id, map[string]interface{}{
		"status":         model.GenerationStatusCompleted,
		"filename":       outcome.Filename,
		"pages":          outcome.Pages,
		"size_bytes":     outcome.SizeBytes,
		"images_dropped": outcome.ImagesDropped,
		"duration_ms":    outcome.Duration.Milliseconds(),
		"completed_at":   &now,
	})
}

func (s *generationStore) MarkFailed(id, code, message string, duration time.Duration) error {
	now := time.Now()
	return s.updateOne(id, map[string]interface{}{
		"status":        model.GenerationStatusFailed,
		"error_code":    code,
		"error_message": message,
		"duration_ms":   duration.Milliseconds(),
		"completed_at":  &now,
	})
}

// updateOne applies updates to one row and reports gorm.ErrRecordNotFound
// when id does not exist.
func (s *generationStore) updateOne(id string, updates map[string]interface{}) error {
	result := s.db.Model(&model.Generation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *generationStore) List(query model.GenerationQuery) ([]model.Generation, int64, error) {
	query.Normalize()

	var gens []model.Generation
	var total int64

	q := s.db.Model(&model.Generation{})
	if query.RecordID != "" {
		q = q.Where("record_id = ?", query.RecordID)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.Format != "" {
		q = q.Where("format = ?", query.Format)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.PageSize
	err := q.Order("created_at DESC").Limit(query.PageSize).Offset(offset).Find(&gens).Error
	return gens, total, err
}

func (s *generationStore) LatestForRecord(recordID string) (*model.Generation, error) {
	var gen model.Generation
	err := s.db.Where("record_id = ?", recordID).Order("created_at DESC").First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

func (s *generationStore) CountByStatus() (map[model.GenerationStatus]int64, error) {
	var rows []struct {
		Status model.GenerationStatus
		Count  int64
	}
	err := s.db.Model(&model.Generation{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.GenerationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *generationStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.Where("created_at < ?", cutoff).Delete(&model.Generation{})
	return result.RowsAffected, result.Error
}
