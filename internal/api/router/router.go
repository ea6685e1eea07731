// Package router sets up the API routes for server mode.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/valreport/consts"
	"github.com/verustcode/valreport/internal/api/handler"
	"github.com/verustcode/valreport/internal/api/middleware"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/store"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Config *config.Config
	Engine *generation.Engine
	// Store is nil when generation history is disabled
	Store store.Store
	// DBCheck reports database health; nil when history is disabled
	DBCheck func() error
}

// Setup configures all API routes
func Setup(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Server.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))
	r.Use(otelgin.Middleware(consts.ServiceName))

	healthHandler := handler.NewHealthHandler(deps.DBCheck, deps.Engine.Backend().Enabled())
	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.TokenAuth(cfg.Server.APIToken))

	// Report rendering from posted records
	reportHandler := handler.NewReportHandler(deps.Engine)
	reports := v1.Group("/reports")
	reports.Use(middleware.BodyLimit(int64(cfg.Server.MaxBodyMB) << 20))
	{
		reports.POST("/resolve", reportHandler.Resolve)
		reports.POST("/html", reportHandler.RenderHTML)
		reports.POST("/pdf", reportHandler.RenderPDF)
	}

	// Valuations stored in the backend API
	valuationHandler := handler.NewValuationHandler(deps.Engine)
	valuations := v1.Group("/valuations")
	{
		valuations.GET("", valuationHandler.ListValuations)
		valuations.GET("/:id", valuationHandler.GetValuation)
		valuations.GET("/:id/report", valuationHandler.GetReport)
		valuations.POST("/:id/approve", valuationHandler.Approve)
		valuations.POST("/:id/reject", valuationHandler.Reject)
	}

	// Generation history
	if deps.Store != nil {
		generationHandler := handler.NewGenerationHandler(deps.Store)
		generations := v1.Group("/generations")
		{
			generations.GET("", generationHandler.ListGenerations)
			generations.GET("/stats", generationHandler.GetStats)
			generations.GET("/:id", generationHandler.GetGeneration)
		}
	}
}
