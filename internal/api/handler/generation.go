package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/logger"
)

// GenerationHandler serves the generation history
type GenerationHandler struct {
	store store.Store
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(s store.Store) *GenerationHandler {
	return &GenerationHandler{store: s}
}

// ListGenerations handles GET /api/v1/generations
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	var query model.GenerationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, errors.ErrValidation("Invalid query: "+err.Error()))
		return
	}
	query.Normalize()

	gens, total, err := h.store.Generation().List(query)
	if err != nil {
		logger.Error("Failed to list generations", zap.Error(err))
		abortWithError(c, errors.Wrap(errors.ErrCodeDBQuery, "failed to list generations", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     gens,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	})
}

// GetGeneration handles GET /api/v1/generations/:id
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	gen, err := h.store.Generation().GetByID(c.Param("id"))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			abortWithError(c, errors.ErrNotFound("generation"))
			return
		}
		abortWithError(c, errors.Wrap(errors.ErrCodeDBQuery, "failed to get generation", err))
		return
	}
	c.JSON(http.StatusOK, gen)
}

// GetStats handles GET /api/v1/generations/stats
func (h *GenerationHandler) GetStats(c *gin.Context) {
	counts, err := h.store.Generation().CountByStatus()
	if err != nil {
		abortWithError(c, errors.Wrap(errors.ErrCodeDBQuery, "failed to count generations", err))
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_status": counts,
	})
}
