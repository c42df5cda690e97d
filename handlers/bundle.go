package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Public endpoints.
	CreateBookingHandler gin.HandlerFunc
	ListDayHandler       gin.HandlerFunc

	// Staff availability endpoints.
	CreateAvailabilityHandler gin.HandlerFunc
	UpdateAvailabilityHandler gin.HandlerFunc
	DeleteAvailabilityHandler gin.HandlerFunc
	ListAvailabilityHandler   gin.HandlerFunc

	// Staff booking dashboard endpoints.
	ListBookingsHandler    gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	CompleteBookingHandler gin.HandlerFunc
	SyncHistoryHandler     gin.HandlerFunc
	StatsHandler           gin.HandlerFunc
	ResyncHandler          gin.HandlerFunc

	// External connection endpoints.
	GoogleAuthURLHandler      gin.HandlerFunc
	GoogleCallbackHandler     gin.HandlerFunc
	DisconnectCalendarHandler gin.HandlerFunc
	ConnectionsStatusHandler  gin.HandlerFunc
}
