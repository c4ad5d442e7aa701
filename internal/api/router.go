package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kutbudev/ctdp/internal/service"
)

// Handler bundles the HTTP handlers around the injected service.
type Handler struct {
	svc *service.ChainService
}

// NewHandler creates the handler set.
func NewHandler(svc *service.ChainService) *Handler {
	return &Handler{svc: svc}
}

// NewRouter builds the gin engine exposing one route per named operation.
func NewRouter(svc *service.ChainService) *gin.Engine {
	h := NewHandler(svc)

	r := gin.Default()

	// Ping endpoint for health check
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	v1 := r.Group("/v1/ctdp")
	{
		// Context routes
		v1.GET("/contexts", h.ListContexts)
		v1.POST("/contexts", h.CreateContext)
		v1.PUT("/contexts/:id", h.UpdateContext)
		v1.DELETE("/contexts/:id", h.DeleteContext)
		v1.GET("/contexts/:id/chains", h.GetContextChains)
		v1.PUT("/contexts/:id/exception-rules", h.UpdateExceptionRules)
		v1.GET("/contexts/:id/auxiliary-info", h.GetAuxiliaryInfo)

		// Chain routes
		v1.POST("/chains/start", h.StartChain)
		v1.POST("/chains/:id/increment", h.IncrementChain)
		v1.POST("/chains/:id/break", h.BreakChain)
		v1.POST("/chains/:id/archive", h.ArchiveChain)
		v1.PUT("/chains/:id/title", h.UpdateTaskTitle)
		v1.POST("/chains/:id/pause", h.PauseSession)
		v1.POST("/chains/:id/resume", h.ResumeSession)

		// Reservation routes
		v1.POST("/auxiliary", h.ScheduleAuxiliary)
		v1.GET("/auxiliary/upcoming", h.ListUpcomingAuxiliary)
		v1.POST("/auxiliary/:id/fulfill", h.FulfillAuxiliary)
		v1.POST("/auxiliary/:id/fail", h.FailAuxiliary)
		v1.POST("/auxiliary/:id/cancel", h.CancelAuxiliary)

		// Statistics routes
		v1.GET("/statistics/chains", h.ChainStatistics)
		v1.GET("/statistics/contexts", h.ContextStatistics)

		// Tag routes
		v1.GET("/tags", h.ListTags)
		v1.POST("/tags", h.CreateTag)

		// Settings routes
		v1.GET("/settings", h.GetSettings)
		v1.PUT("/settings", h.UpdateSettings)
	}

	return r
}
