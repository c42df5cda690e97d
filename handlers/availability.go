package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/models"
	availabilitySvc "ledgerly/services/availability"
)

// AvailabilityHandler serves staff window management plus the public
// day listing.
type AvailabilityHandler struct {
	Svc availabilitySvc.AvailabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(svc availabilitySvc.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc}
}

// CreateAvailabilityHandler declares a new bookable window and generates
// its slots.
func (h *AvailabilityHandler) CreateAvailabilityHandler(c *gin.Context) {
	var req models.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	avail, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, avail)
}

// UpdateAvailabilityHandler patches a window. Rejected with 409 when any of
// its slots is already booked.
func (h *AvailabilityHandler) UpdateAvailabilityHandler(c *gin.Context) {
	var patch models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	avail, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, avail)
}

// DeleteAvailabilityHandler removes a window and its unbooked slots.
func (h *AvailabilityHandler) DeleteAvailabilityHandler(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "availability deleted"})
}

// ListAvailabilityHandler lists windows for the staff dashboard, optionally
// filtered by userId and date query params.
func (h *AvailabilityHandler) ListAvailabilityHandler(c *gin.Context) {
	filter := models.AvailabilityFilter{
		UserID: c.Query("userId"),
		Date:   c.Query("date"),
	}
	list, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListDayHandler is the public slot listing for one date ("YYYY-MM-DD").
func (h *AvailabilityHandler) ListDayHandler(c *gin.Context) {
	list, err := h.Svc.ListDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
