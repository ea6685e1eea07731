// Package generation runs report generations end to end: it builds the
// export pipeline from configuration, records every run in the history
// store and fetches records from the backend API when asked by id.
package generation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/consts"
	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/internal/imagefetch"
	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/notification"
	"github.com/verustcode/valreport/internal/paginate"
	"github.com/verustcode/valreport/internal/pdfdoc"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/render"
	"github.com/verustcode/valreport/internal/report/exporter"
	"github.com/verustcode/valreport/internal/resolve"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/httpclient"
	"github.com/verustcode/valreport/pkg/idgen"
	"github.com/verustcode/valreport/pkg/logger"
)

// Job is one generation request
type Job struct {
	Record record.Record
	Format exporter.ExportFormat
	Source model.GenerationSource
	// Metadata is stored with the history row
	Metadata model.JSONMap
}

// Engine orchestrates report generation
type Engine struct {
	manager *exporter.ExportManager
	store   store.Store
	backend *backend.Client
	// notifier is optional
	notifier *notification.Manager
	pending  sync.WaitGroup
}

// notifyTimeout bounds one notification delivery
const notifyTimeout = 30 * time.Second

// NewEngine creates an engine. s may be nil to run without history and b
// may be nil when no backend API is configured.
func NewEngine(m *exporter.ExportManager, s store.Store, b *backend.Client) *Engine {
	if b == nil {
		b = backend.NewClient(backend.Options{})
	}
	return &Engine{manager: m, store: s, backend: b}
}

// NewPipeline builds the export manager described by cfg: Chrome
// rasterization, gofpdf encoding and, when enabled, image inlining.
func NewPipeline(cfg *config.Config) *exporter.ExportManager {
	var opts []exporter.ManagerOption
	if cfg.Images.Enabled {
		fetcher := httpclient.NewConnector("",
			httpclient.WithRequestTimeout(time.Duration(cfg.Images.TimeoutSeconds)*time.Second),
			httpclient.WithMaxResponseBytes(cfg.Images.MaxBytes),
		)
		opts = append(opts, exporter.WithImageEmbedder(imagefetch.NewEmbedder(fetcher, cfg.Images.Options())))
	}

	m := exporter.NewExportManager(opts...)
	m.Register(exporter.ExportFormatHTML, exporter.NewHTMLExporter())
	m.Register(exporter.ExportFormatPDF, exporter.NewPDFExporter(
		render.NewRenderer(cfg.Render.Options()),
		pdfdoc.NewEncoder(cfg.Pagination, pdfdoc.Meta{
			Title:       "Valuation Report",
			Author:      consts.ProjectName,
			PageNumbers: true,
		}),
		paginate.NewEngine(cfg.Pagination),
	))
	return m
}

// SetNotifier announces finished generations through n
func (e *Engine) SetNotifier(n *notification.Manager) {
	e.notifier = n
}

// Manager returns the underlying export manager
func (e *Engine) Manager() *exporter.ExportManager {
	return e.manager
}

// Backend returns the valuation API client
func (e *Engine) Backend() *backend.Client {
	return e.backend
}

// Store returns the history store, nil when history is disabled
func (e *Engine) Store() store.Store {
	return e.store
}

// Run generates one report and records it in the history store. History
// write failures are logged and never fail the generation.
func (e *Engine) Run(ctx context.Context, job Job) (*exporter.Result, error) {
	if job.Record == nil {
		return nil, errors.New(errors.ErrCodeInvalidRecord, "record is required")
	}
	if job.Source == "" {
		job.Source = model.GenerationSourceAPI
	}

	genID := idgen.NewGenerationID()
	e.recordStart(genID, job)

	start := time.Now()
	result, err := e.manager.Export(ctx, exporter.Request{
		Record:       job.Record,
		Format:       job.Format,
		GenerationID: genID,
	})
	if err != nil {
		e.recordFailure(genID, err, time.Since(start))
		e.notify(ctx, e.failureEvent(genID, job, err))
		return nil, err
	}

	e.recordSuccess(result)
	e.notify(ctx, e.successEvent(job, result))
	return result, nil
}

// notify delivers event in the background. Delivery outlives the request
// but not notifyTimeout.
func (e *Engine) notify(ctx context.Context, event *notification.Event) {
	if !e.notifier.Wants(event.Type) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		// Notify logs its own failures
		_ = e.notifier.Notify(ctx, event)
	}()
}

// WaitNotifications blocks until in-flight notifications are delivered
func (e *Engine) WaitNotifications() {
	e.pending.Wait()
}

func (e *Engine) baseEvent(t notification.EventType, genID string, job Job) *notification.Event {
	f := resolve.Resolve(job.Record)
	return &notification.Event{
		Type:         t,
		GenerationID: genID,
		RecordID:     job.Record.ID(),
		ClientName:   f.SafeGet("clientName", ""),
		BankName:     f.SafeGet("bankName", ""),
		Format:       string(job.Format),
		Source:       string(job.Source),
		Timestamp:    time.Now(),
	}
}

func (e *Engine) successEvent(job Job, result *exporter.Result) *notification.Event {
	event := e.baseEvent(notification.EventGenerationCompleted, result.GenerationID, job)
	event.Extra = map[string]interface{}{
		"filename":    result.Filename,
		"pages":       result.Pages,
		"duration_ms": result.Duration.Milliseconds(),
	}
	return event
}

func (e *Engine) failureEvent(genID string, job Job, cause error) *notification.Event {
	event := e.baseEvent(notification.EventGenerationFailed, genID, job)
	event.ErrorCode = string(errors.CodeOf(cause))
	event.ErrorMessage = cause.Error()
	if appErr, ok := errors.AsAppError(cause); ok {
		event.ErrorMessage = appErr.Message
	}
	return event
}

// RunForValuation fetches a valuation from the backend API and generates its report
func (e *Engine) RunForValuation(ctx context.Context, id string, format exporter.ExportFormat) (*exporter.Result, error) {
	rec, err := e.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New(errors.ErrCodeBackendNotFound, "valuation "+id+" has no data")
	}
	return e.Run(ctx, Job{
		Record:   rec,
		Format:   format,
		Source:   model.GenerationSourceBackend,
		Metadata: model.JSONMap{"valuation_id": id},
	})
}

// Resolve returns the display value of every resolved field of rec
func (e *Engine) Resolve(rec record.Record) map[string]string {
	return resolve.Resolve(rec).Display()
}

func (e *Engine) recordStart(genID string, job Job) {
	if e.store == nil {
		return
	}
	f := resolve.Resolve(job.Record)
	gen := &model.Generation{
		ID:         genID,
		RecordID:   job.Record.ID(),
		ClientName: f.SafeGet("clientName", ""),
		BankName:   f.SafeGet("bankName", ""),
		Format:     string(job.Format),
		Source:     job.Source,
		Status:     model.GenerationStatusPending,
		Metadata:   job.Metadata,
	}
	if err := e.store.Generation().Create(gen); err != nil {
		logger.Warn("[Report] Failed to record generation start",
			zap.String(logger.FieldGenerationID, genID),
			zap.Error(err),
		)
	}
}

func (e *Engine) recordSuccess(result *exporter.Result) {
	if e.store == nil {
		return
	}
	err := e.store.Generation().MarkCompleted(result.GenerationID, store.GenerationOutcome{
		Filename:      result.Filename,
		Pages:         result.Pages,
		SizeBytes:     int64(len(result.Content)),
		ImagesDropped: result.DroppedImages,
		Duration:      result.Duration,
	})
	if err != nil {
		logger.Warn("[Report] Failed to record generation result",
			zap.String(logger.FieldGenerationID, result.GenerationID),
			zap.Error(err),
		)
	}
}

func (e *Engine) recordFailure(genID string, cause error, duration time.Duration) {
	if e.store == nil {
		return
	}
	msg := cause.Error()
	if appErr, ok := errors.AsAppError(cause); ok {
		msg = appErr.Message
	}
	if err := e.store.Generation().MarkFailed(genID, string(errors.CodeOf(cause)), msg, duration); err != nil {
		logger.Warn("[Report] Failed to record generation failure",
			zap.String(logger.FieldGenerationID, genID),
			zap.Error(err),
		)
	}
}
