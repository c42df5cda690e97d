package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	availabilitySvc "ledgerly/services/availability"
	bookingSvc "ledgerly/services/booking"
)

// statusForCode maps domain error codes onto HTTP statuses. Anything not
// listed is treated as an internal failure.
var statusForCode = map[string]int{
	"Validation":           http.StatusBadRequest,
	"AvailabilityNotFound": http.StatusNotFound,
	"BookingNotFound":      http.StatusNotFound,
	"SlotNotFound":         http.StatusNotFound,
	"SlotAlreadyBooked":    http.StatusConflict,
	"HasBookedSlots":       http.StatusConflict,
	"InvalidTransition":    http.StatusConflict,
}

// respondError writes a domain error as JSON with the matching status code.
func respondError(c *gin.Context, err error) {
	var code, message string

	var bErr *bookingSvc.Error
	var aErr *availabilitySvc.Error
	switch {
	case errors.As(err, &bErr):
		code, message = bErr.Code, bErr.Message
	case errors.As(err, &aErr):
		code, message = aErr.Code, aErr.Message
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": message, "code": code})
}
