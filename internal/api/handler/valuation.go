package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/pkg/errors"
)

// ValuationHandler proxies the valuation records API and renders stored valuations
type ValuationHandler struct {
	engine *generation.Engine
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(e *generation.Engine) *ValuationHandler {
	return &ValuationHandler{engine: e}
}

// ApproveRequest is the body of an approval
type ApproveRequest struct {
	Comments string `json:"comments"`
}

// RejectRequest is the body of a rejection
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListValuations handles GET /api/v1/valuations
func (h *ValuationHandler) ListValuations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := h.engine.Backend().List(c.Request.Context(), backend.ListFilter{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"page":  page,
		"limit": limit,
	})
}

// GetValuation handles GET /api/v1/valuations/:id
func (h *ValuationHandler) GetValuation(c *gin.Context) {
	rec, err := h.engine.Backend().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// GetReport handles GET /api/v1/valuations/:id/report?format=pdf|html
func (h *ValuationHandler) GetReport(c *gin.Context) {
	format, err := parseFormat(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := h.engine.RunForValuation(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sendReport(c, result, queryBool(c, "preview"))
}

// Approve handles POST /api/v1/valuations/:id/approve
func (h *ValuationHandler) Approve(c *gin.Context) {
	var req ApproveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.ErrValidation("Invalid request body: "+err.Error()))
			return
		}
	}

	rec, err := h.engine.Backend().Approve(c.Request.Context(), c.Param("id"), req.Comments)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Reject handles POST /api/v1/valuations/:id/reject
func (h *ValuationHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.ErrValidation("Invalid request body: "+err.Error()))
		return
	}

	rec, err := h.engine.Backend().Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}
