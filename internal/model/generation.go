package model

import (
	"time"
)

// GenerationStatus represents the state of one report generation
type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationSource records what triggered a generation
type GenerationSource string

const (
	GenerationSourceAPI     GenerationSource = "api"
	GenerationSourceBackend GenerationSource = "backend"
	GenerationSourceCLI     GenerationSource = "cli"
)

// Generation is one HTML or PDF rendering of a valuation record
type Generation struct {
	ID        string    `gorm:"primaryKey;size:20" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Record identification
	RecordID   string `gorm:"size:64;index" json:"record_id"`
	ClientName string `gorm:"size:255" json:"client_name,omitempty"`
	BankName   string `gorm:"size:255" json:"bank_name,omitempty"`

	Format string           `gorm:"size:10;not null;index" json:"format"`
	Source GenerationSource `gorm:"size:20;not null" json:"source"`
	Status GenerationStatus `gorm:"size:20;not null;index" json:"status"`

	// Output, set once completed
	Filename      string `gorm:"size:255" json:"filename,omitempty"`
	Pages         int    `json:"pages"`
	SizeBytes     int64  `json:"size_bytes"`
	ImagesDropped int    `json:"images_dropped"`
	DurationMs    int64  `json:"duration_ms"`

	// Failure details
	ErrorCode    string `gorm:"size:10" json:"error_code,omitempty"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Metadata    JSONMap    `gorm:"type:text" json:"metadata,omitempty"`
}

// TableName specifies the table name for Generation
func (Generation) TableName() string {
	return "generations"
}

// IsFinished reports whether the generation reached a terminal state
func (g *Generation) IsFinished() bool {
	return g.Status == GenerationStatusCompleted || g.Status == GenerationStatusFailed
}

// GenerationQuery represents query parameters for listing generations
type GenerationQuery struct {
	RecordID string           `form:"record_id" json:"record_id,omitempty"`
	Status   GenerationStatus `form:"status" json:"status,omitempty"`
	Format   string           `form:"format" json:"format,omitempty"`
	Page     int              `form:"page" json:"page,omitempty"`
	PageSize int              `form:"page_size" json:"page_size,omitempty"`
}

// Normalize clamps paging values into range
func (q *GenerationQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}
