package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/report/exporter"
)

// ReportHandler renders reports from records posted by the caller
type ReportHandler struct {
	engine *generation.Engine
}

// NewReportHandler creates a new report handler
func NewReportHandler(e *generation.Engine) *ReportHandler {
	return &ReportHandler{engine: e}
}

// Resolve handles POST /api/v1/reports/resolve
// It returns the display value of every resolved field.
func (h *ReportHandler) Resolve(c *gin.Context) {
	rec, err := bindRecord(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record_id": rec.ID(),
		"fields":    h.engine.Resolve(rec),
	})
}

// RenderHTML handles POST /api/v1/reports/html
func (h *ReportHandler) RenderHTML(c *gin.Context) {
	h.render(c, exporter.ExportFormatHTML)
}

// RenderPDF handles POST /api/v1/reports/pdf
// With ?preview=true the PDF is sent inline.
func (h *ReportHandler) RenderPDF(c *gin.Context) {
	h.render(c, exporter.ExportFormatPDF)
}

func (h *ReportHandler) render(c *gin.Context, format exporter.ExportFormat) {
	rec, err := bindRecord(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	preview := queryBool(c, "preview")
	result, err := h.engine.Run(c.Request.Context(), generation.Job{
		Record:   rec,
		Format:   format,
		Source:   model.GenerationSourceAPI,
		Metadata: model.JSONMap{"preview": preview},
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	sendReport(c, result, preview)
}
