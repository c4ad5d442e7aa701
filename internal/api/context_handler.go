package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/ctdp/internal/service"
	"gorm.io/gorm"
)

// ListContexts returns all contexts with their active chains.
func (h *Handler) ListContexts(c *gin.Context) {
	contexts, err := h.svc.GetContextsWithActiveChains()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contexts"})
		return
	}
	c.JSON(http.StatusOK, contexts)
}

// GetContextChains returns one context with its full chain history.
func (h *Handler) GetContextChains(c *gin.Context) {
	id := c.Param("id")
	context, err := h.svc.GetContextWithAllChains(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch context"})
		return
	}
	c.JSON(http.StatusOK, context)
}

// CreateContext creates a new sacred context.
func (h *Handler) CreateContext(c *gin.Context) {
	var input service.ContextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	context, err := h.svc.CreateSacredContext(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create context"})
		return
	}

	c.JSON(http.StatusCreated, context)
}

// UpdateContext applies a partial update to a context.
func (h *Handler) UpdateContext(c *gin.Context) {
	id := c.Param("id")

	var input service.ContextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	context, err := h.svc.UpdateSacredContext(id, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update context"})
		return
	}

	c.JSON(http.StatusOK, context)
}

// DeleteContext deletes a context unless an active chain still runs on it.
func (h *Handler) DeleteContext(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.DeleteSacredContext(id); err != nil {
		switch {
		case errors.Is(err, service.ErrContextHasActiveChain):
			c.JSON(http.StatusConflict, gin.H{"error": "Context has an active chain; complete or break it first"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete context"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Context deleted successfully"})
}

// ExceptionRulesInput DTO for promoting break reasons into allowed exceptions
type ExceptionRulesInput struct {
	Items []string `json:"items" binding:"required"`
}

// UpdateExceptionRules merges the exception items into the context rules.
func (h *Handler) UpdateExceptionRules(c *gin.Context) {
	id := c.Param("id")

	var input ExceptionRulesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	context, err := h.svc.UpdateExceptionRules(id, input.Items)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update exception rules"})
		return
	}

	c.JSON(http.StatusOK, context)
}
