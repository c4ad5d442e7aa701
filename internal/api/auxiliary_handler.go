package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/ctdp/internal/service"
	"gorm.io/gorm"
)

// ScheduleAuxiliary creates a reservation against a context.
func (h *Handler) ScheduleAuxiliary(c *gin.Context) {
	var input service.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.TargetContextID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_context_id is required"})
		return
	}

	id, err := h.svc.ScheduleAuxiliaryTask(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationPending):
			c.JSON(http.StatusConflict, gin.H{"error": "Context already has a pending reservation"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule auxiliary task"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListUpcomingAuxiliary returns pending reservations whose deadline has not
// passed, soonest first.
func (h *Handler) ListUpcomingAuxiliary(c *gin.Context) {
	tasks, err := h.svc.GetUpcomingAuxiliaryTasks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get upcoming auxiliary tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// FulfillAuxiliary honors a reservation. Best effort; result is a flag.
func (h *Handler) FulfillAuxiliary(c *gin.Context) {
	ok := h.svc.FulfillAuxiliaryTask(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// FailAuxiliary marks a reservation's deadline as missed.
func (h *Handler) FailAuxiliary(c *gin.Context) {
	ok := h.svc.FailAuxiliaryTask(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// CancelInput DTO for aborting a reservation
type CancelInput struct {
	Reason string `json:"reason"`
}

// CancelAuxiliary aborts a reservation, breaking the linked main chain.
func (h *Handler) CancelAuxiliary(c *gin.Context) {
	var input CancelInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ok := h.svc.CancelAuxiliaryTask(c.Param("id"), input.Reason)
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// GetAuxiliaryInfo returns reservation-dialog defaults for a context.
func (h *Handler) GetAuxiliaryInfo(c *gin.Context) {
	info, err := h.svc.GetContextAuxiliaryInfo(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Context not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get auxiliary info"})
		return
	}
	c.JSON(http.StatusOK, info)
}
