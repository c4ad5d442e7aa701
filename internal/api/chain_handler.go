package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/ctdp/internal/service"
	"gorm.io/gorm"
)

// StartChainInput DTO for starting or continuing a chain
type StartChainInput struct {
	ContextID string            `json:"context_id" binding:"required"`
	TaskInfo  *service.TaskInfo `json:"task_info"`
}

// StartChain starts a fresh chain or continues the context's active one.
func (h *Handler) StartChain(c *gin.Context) {
	var input StartChainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.StartOrContinueChain(input.ContextID, input.TaskInfo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start or continue chain"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// IncrementChain records a completed session on a chain.
func (h *Handler) IncrementChain(c *gin.Context) {
	id := c.Param("id")

	var input service.IncrementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chain, err := h.svc.IncrementChain(id, input)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		case errors.Is(err, service.ErrChainNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Chain is not active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment chain"})
		}
		return
	}

	c.JSON(http.StatusOK, chain)
}

// BreakChain marks a discipline violation on a chain.
func (h *Handler) BreakChain(c *gin.Context) {
	id := c.Param("id")

	var input service.BreakInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chain, err := h.svc.BreakChain(id, input)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		case errors.Is(err, service.ErrChainNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Chain is not active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to break chain"})
		}
		return
	}

	c.JSON(http.StatusOK, chain)
}

// ArchiveChain soft-deletes a chain. Best effort; the result is a flag.
func (h *Handler) ArchiveChain(c *gin.Context) {
	id := c.Param("id")
	ok := h.svc.ArchiveChain(id)
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// UpdateTitleInput DTO for renaming the in-flight task
type UpdateTitleInput struct {
	Title string `json:"title" binding:"required"`
}

// UpdateTaskTitle renames the chain's current task.
func (h *Handler) UpdateTaskTitle(c *gin.Context) {
	id := c.Param("id")

	var input UpdateTitleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.UpdateTaskTitle(id, input.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task title"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SessionNoteInput DTO for pause/resume events
type SessionNoteInput struct {
	Note string `json:"note"`
}

// PauseSession records a PAUSED event on an active chain.
func (h *Handler) PauseSession(c *gin.Context) {
	id := c.Param("id")

	var input SessionNoteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	entry, err := h.svc.PauseSession(id, input.Note)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		case errors.Is(err, service.ErrChainNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Chain is not active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pause session"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ResumeSession records a RESUMED event on an active chain.
func (h *Handler) ResumeSession(c *gin.Context) {
	id := c.Param("id")

	var input SessionNoteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	entry, err := h.svc.ResumeSession(id, input.Note)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		case errors.Is(err, service.ErrChainNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Chain is not active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resume session"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}
