package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ledgerly/models"
	bookingSvc "ledgerly/services/booking"
	"ledgerly/utils"
)

// BookingHandler serves the public booking endpoint.
type BookingHandler struct {
	Svc bookingSvc.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc bookingSvc.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// CreateBookingHandler books a slot for a customer. A slot lost to a
// concurrent booker returns 409 so the client can refresh its slot list.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingId", resp.Booking.ID),
		zap.String("slotId", resp.Booking.SlotID),
		zap.String("calendarSync", resp.SyncStatus.Calendar),
		zap.String("crmSync", resp.SyncStatus.CRM),
	)
	c.JSON(http.StatusCreated, resp)
}
