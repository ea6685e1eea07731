package exporter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/paginate"
	"github.com/verustcode/valreport/internal/report"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// Rasterizer renders HTML documents to full-page bitmaps, one per document
type Rasterizer interface {
	RasterizeAll(ctx context.Context, docs []string) ([]*image.RGBA, error)
}

// PageEncoder writes laid-out pages as a PDF
type PageEncoder interface {
	Encode(pages []paginate.Page, w io.Writer) error
}

// mainBlock names the report body in layouts and logs
const mainBlock = "main"

// PDFExporter rasterizes the report and its regions, slices the bitmaps into
// A4 pages and encodes them as a PDF.
type PDFExporter struct {
	rasterizer Rasterizer
	encoder    PageEncoder
	engine     *paginate.Engine
}

// NewPDFExporter creates a PDF exporter
func NewPDFExporter(rasterizer Rasterizer, encoder PageEncoder, engine *paginate.Engine) *PDFExporter {
	return &PDFExporter{
		rasterizer: rasterizer,
		encoder:    encoder,
		engine:     engine,
	}
}

// Export renders doc into PDF bytes and returns the page count
func (e *PDFExporter) Export(ctx context.Context, doc *report.Document) ([]byte, int, error) {
	span := telemetry.SpanFromContext(ctx)

	layout, err := report.SplitRegions(doc.HTML)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeAssembleFailed, "failed to split report regions", err)
	}

	docs := make([]string, 0, len(layout.Regions)+1)
	docs = append(docs, layout.Main)
	for _, r := range layout.Regions {
		docs = append(docs, r.HTML)
	}

	bitmaps, err := e.rasterizer.RasterizeAll(ctx, docs)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeRenderFailed, "failed to render report", err)
	}
	if len(bitmaps) != len(docs) {
		return nil, 0, errors.New(errors.ErrCodeRenderFailed,
			fmt.Sprintf("renderer returned %d bitmaps for %d documents", len(bitmaps), len(docs)))
	}
	telemetry.AddSpanEvent(span, "rasterized", telemetry.AttrBlockCount.Int(len(docs)))

	blocks := make([]paginate.Block, 0, len(docs))
	blocks = append(blocks, paginate.Block{Kind: paginate.KindFlow, Name: mainBlock, Image: bitmaps[0]})
	for i, r := range layout.Regions {
		blocks = append(blocks, paginate.Block{Kind: r.Kind, Name: r.Name, Image: bitmaps[i+1]})
	}

	pages := e.engine.Layout(blocks)
	if len(pages) == 0 {
		return nil, 0, errors.New(errors.ErrCodeRenderFailed, "rendered report is empty")
	}

	safe, fallback := countPageBreaks(pages)
	telemetry.GetMetrics().RecordPageBreaks(ctx, safe, fallback)
	telemetry.AddSpanEvent(span, "paginated",
		telemetry.AttrPageCount.Int(len(pages)),
		attribute.Int("breaks.safe", safe),
		attribute.Int("breaks.fallback", fallback),
	)

	var buf bytes.Buffer
	if err := e.encoder.Encode(pages, &buf); err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeEncodeFailed, "failed to encode pdf", err)
	}

	logger.Debug("[Report] PDF exported",
		zap.Int("blocks", len(blocks)),
		zap.Int("pages", len(pages)),
		zap.Int("safe_breaks", safe),
		zap.Int("fallback_breaks", fallback),
		zap.String("size", formatBytes(buf.Len())),
	)
	return buf.Bytes(), len(pages), nil
}

// countPageBreaks tallies seam kinds per block across the laid-out pages
func countPageBreaks(pages []paginate.Page) (safe, fallback int) {
	var (
		order  []string
		strips = make(map[string][]paginate.Strip)
	)
	for _, p := range pages {
		for _, pl := range p.Placements {
			if _, seen := strips[pl.Block]; !seen {
				order = append(order, pl.Block)
			}
			strips[pl.Block] = append(strips[pl.Block], pl.Strip)
		}
	}
	for _, name := range order {
		s, f := paginate.CountBreaks(strips[name])
		safe += s
		fallback += f
	}
	return safe, fallback
}

// formatBytes formats a byte count as a human-readable string
func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Name returns the exporter name
func (e *PDFExporter) Name() string {
	return "PDF"
}

// FileExtension returns the file extension
func (e *PDFExporter) FileExtension() string {
	return ".pdf"
}

// ContentType returns the MIME type of the document
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}
