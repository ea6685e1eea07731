package exporter

import (
	"context"

	"github.com/verustcode/valreport/internal/report"
)

// HTMLExporter returns the assembled report markup unchanged
type HTMLExporter struct{}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Export returns the self-contained HTML document
func (e *HTMLExporter) Export(_ context.Context, doc *report.Document) ([]byte, int, error) {
	return []byte(doc.HTML), 0, nil
}

// Name returns the exporter name
func (e *HTMLExporter) Name() string {
	return "HTML"
}

// FileExtension returns the file extension
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// ContentType returns the MIME type of the document
func (e *HTMLExporter) ContentType() string {
	return "text/html; charset=utf-8"
}
