package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/ctdp/internal/service"
)

// ChainStatistics returns the global chain rollup.
func (h *Handler) ChainStatistics(c *gin.Context) {
	stats, err := h.svc.GetChainStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get chain statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ContextStatistics returns the per-context rollup.
func (h *Handler) ContextStatistics(c *gin.Context) {
	stats, err := h.svc.GetContextStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get context statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListTags returns all tags, name ascending.
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.svc.GetAllTags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTagInput DTO for creating a tag
type CreateTagInput struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateTag upserts a tag by name.
func (h *Handler) CreateTag(c *gin.Context) {
	var input CreateTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.svc.CreateTag(input.Name, input.Color)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// GetSettings returns the global settings row.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.svc.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input service.SettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.svc.UpdateSettings(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
