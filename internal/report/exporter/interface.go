// Package exporter turns raw valuation records into finished report files
// through pluggable format exporters.
package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/imagefetch"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/report"
	"github.com/verustcode/valreport/internal/resolve"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/idgen"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	// ExportFormatHTML is the assembled report markup
	ExportFormatHTML ExportFormat = "html"
	// ExportFormatPDF is the paginated A4 document
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseFormat returns the format named by s, defaulting to PDF when s is empty
func ParseFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportFormatPDF:
		return ExportFormatPDF, nil
	case ExportFormatHTML:
		return ExportFormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ReportExporter renders an assembled report into one output format
type ReportExporter interface {
	// Export renders doc and returns the file content and its page count (0 when unpaginated)
	Export(ctx context.Context, doc *report.Document) ([]byte, int, error)
	// Name returns the human-readable name of the exporter (e.g. "HTML", "PDF")
	Name() string
	// FileExtension returns the file extension for this format (e.g. ".html", ".pdf")
	FileExtension() string
	// ContentType returns the MIME type of the exported content
	ContentType() string
}

// ImageEmbedder inlines remote images before assembly
type ImageEmbedder interface {
	Embed(ctx context.Context, f *resolve.Fields) (*resolve.Fields, imagefetch.Stats)
}

// Request describes one generation
type Request struct {
	Record record.Record
	Format ExportFormat
	// GenerationID tags logs and spans; a new id is generated when empty
	GenerationID string
}

// Result is a finished report file
type Result struct {
	GenerationID string
	RecordID     string
	Format       ExportFormat
	Filename     string
	ContentType  string
	Content      []byte
	Pages        int
	Images       int
	// DroppedImages counts image references that could not be rendered
	DroppedImages int
	Duration      time.Duration
}

// ExportManager runs the generation pipeline and dispatches to registered exporters
type ExportManager struct {
	exporters map[ExportFormat]ReportExporter
	mu        sync.RWMutex

	assembler *report.Assembler
	embedder  ImageEmbedder
}

// ManagerOption configures an ExportManager
type ManagerOption func(*ExportManager)

// WithImageEmbedder inlines remote images before assembly
func WithImageEmbedder(e ImageEmbedder) ManagerOption {
	return func(m *ExportManager) {
		m.embedder = e
	}
}

// WithAssembler replaces the default report assembler
func WithAssembler(a *report.Assembler) ManagerOption {
	return func(m *ExportManager) {
		m.assembler = a
	}
}

// NewExportManager creates a new export manager
func NewExportManager(opts ...ManagerOption) *ExportManager {
	m := &ExportManager{
		exporters: make(map[ExportFormat]ReportExporter),
		assembler: report.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register registers an exporter for a specific format
func (m *ExportManager) Register(format ExportFormat, exporter ReportExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters[format] = exporter
	logger.Debug("Registered report exporter",
		zap.String("format", string(format)),
		zap.String("name", exporter.Name()),
	)
}

// Export resolves the record, assembles the report and renders it in the
// requested format. Failures are returned as *errors.AppError.
func (m *ExportManager) Export(ctx context.Context, req Request) (*Result, error) {
	exporter, err := m.GetExporter(req.Format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "unsupported export format", err)
	}

	genID := req.GenerationID
	if genID == "" {
		genID = idgen.NewGenerationID()
	}
	recordID := req.Record.ID()
	format := string(req.Format)
	log := logger.WithGeneration(genID, recordID)

	ctx, span := telemetry.StartSpan(ctx, "report.export",
		telemetry.WithGenerationAttributes(genID, recordID, format))
	defer span.End()

	metrics := telemetry.GetMetrics()
	metrics.RecordGenerationStarted(ctx, format)
	start := time.Now()

	result, err := m.export(ctx, req, exporter)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordGenerationCompleted(ctx, format, "failed", duration.Seconds(), 0)
		telemetry.SetSpanError(span, err)
		log.Error("[Report] Generation failed",
			zap.String("format", format),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	result.GenerationID = genID
	result.RecordID = recordID
	result.Duration = duration
	metrics.RecordGenerationCompleted(ctx, format, "success", duration.Seconds(), result.Pages)
	span.SetAttributes(
		telemetry.AttrPageCount.Int(result.Pages),
		telemetry.AttrImageCount.Int(result.Images),
	)
	telemetry.SetSpanOK(span)

	log.Info("[Report] Generation completed",
		zap.String("format", format),
		zap.String("filename", result.Filename),
		zap.Int("pages", result.Pages),
		zap.Int("size", len(result.Content)),
		zap.Int("images_dropped", result.DroppedImages),
		zap.Duration("duration", duration),
	)
	return result, nil
}

func (m *ExportManager) export(ctx context.Context, req Request, exporter ReportExporter) (*Result, error) {
	span := telemetry.SpanFromContext(ctx)

	fields := resolve.Resolve(req.Record)
	telemetry.AddSpanEvent(span, "resolved", attribute.Int("fields", len(fields.Keys())))

	dropped := 0
	if m.embedder != nil {
		var stats imagefetch.Stats
		fields, stats = m.embedder.Embed(ctx, fields)
		dropped += stats.TotalDropped()
		telemetry.AddSpanEvent(span, "images_embedded",
			attribute.Int("embedded", stats.Embedded),
			attribute.Int("dropped", stats.TotalDropped()),
		)
	}

	doc, err := m.assembler.Build(fields)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssembleFailed, "failed to assemble report", err)
	}
	for collection, n := range doc.Dropped {
		telemetry.GetMetrics().RecordImagesDropped(ctx, collection, "invalid_reference", n)
		dropped += n
	}

	content, pages, err := exporter.Export(ctx, doc)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to export report with %s exporter", exporter.Name()), err)
	}

	return &Result{
		Format:        req.Format,
		Filename:      filenameFor(fields, req.Record, exporter.FileExtension()),
		ContentType:   exporter.ContentType(),
		Content:       content,
		Pages:         pages,
		Images:        doc.ImageCount,
		DroppedImages: dropped,
	}, nil
}

// ExportToFile exports a record and writes the result to outputPath. When
// outputPath is a directory the generated filename is used inside it.
func (m *ExportManager) ExportToFile(ctx context.Context, req Request, outputPath string) (*Result, error) {
	result, err := m.Export(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := WriteFile(result, outputPath); err != nil {
		return nil, err
	}
	return result, nil
}

// WriteFile writes result to outputPath and returns the written path. An empty
// outputPath or an existing directory receives the result's own filename.
func WriteFile(result *Result, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = result.Filename
	} else if info, statErr := os.Stat(outputPath); statErr == nil && info.IsDir() {
		outputPath = filepath.Join(outputPath, result.Filename)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, result.Content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("Report exported to file",
		zap.String(logger.FieldGenerationID, result.GenerationID),
		zap.String("format", string(result.Format)),
		zap.String("path", outputPath),
	)
	return outputPath, nil
}

// GenerateFilename returns the download filename of rec in the given format
func (m *ExportManager) GenerateFilename(rec record.Record, format ExportFormat) string {
	m.mu.RLock()
	exporter, ok := m.exporters[format]
	m.mu.RUnlock()

	ext := "." + string(format)
	if ok {
		ext = exporter.FileExtension()
	}
	return filenameFor(resolve.Resolve(rec), rec, ext)
}

// filenameFor derives the base name from clientName, then the record id,
// then a generated name.
func filenameFor(f *resolve.Fields, rec record.Record, ext string) string {
	baseName := sanitizeFilename(f.SafeGet("clientName", ""))
	if baseName == "" {
		baseName = sanitizeFilename(rec.ID())
	}
	if baseName == "" {
		baseName = idgen.NewReportName()
	}
	return baseName + ext
}

// SupportedFormats returns the registered formats in name order
func (m *ExportManager) SupportedFormats() []ExportFormat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	formats := make([]ExportFormat, 0, len(m.exporters))
	for format := range m.exporters {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// GetExporter returns the exporter for a specific format
func (m *ExportManager) GetExporter(format ExportFormat) (ReportExporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporter, ok := m.exporters[format]
	if !ok {
		return nil, fmt.Errorf("no exporter registered for format: %s", format)
	}
	return exporter, nil
}

// sanitizeFilename removes unsafe characters from filename
func sanitizeFilename(name string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "\t", "\n"}
	result := strings.TrimSpace(name)
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, "_.")

	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
