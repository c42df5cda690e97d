package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"ledgerly/cron"
	"ledgerly/models"
	bookingSvc "ledgerly/services/booking"
	"ledgerly/services/syncer"
	"ledgerly/utils"
)

// AdminHandler serves the staff booking dashboard: listings, lifecycle
// transitions, sync history and manual resync.
type AdminHandler struct {
	Svc        bookingSvc.BookingService
	Dispatcher syncer.Dispatcher
	// Queue enqueues background resync tasks. When nil the resync endpoint
	// runs the dispatch inline instead.
	Queue *asynq.Client
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc bookingSvc.BookingService, dispatcher syncer.Dispatcher, queue *asynq.Client) *AdminHandler {
	return &AdminHandler{Svc: svc, Dispatcher: dispatcher, Queue: queue}
}

// ListBookingsHandler lists bookings with optional status, email and
// date-range filters.
func (h *AdminHandler) ListBookingsHandler(c *gin.Context) {
	filter := models.BookingFilter{
		Status: c.Query("status"),
		Email:  c.Query("email"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, expected YYYY-MM-DD"})
			return
		}
		filter.DateFrom = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, expected YYYY-MM-DD"})
			return
		}
		filter.DateTo = t.Add(24 * time.Hour)
	}

	list, err := h.Svc.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBookingHandler returns one booking with its slot and latest sync state.
func (h *AdminHandler) GetBookingHandler(c *gin.Context) {
	detail, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelBookingHandler cancels a booking and returns its slot to the pool.
func (h *AdminHandler) CancelBookingHandler(c *gin.Context) {
	b, err := h.Svc.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBookingHandler marks a confirmed booking completed.
func (h *AdminHandler) CompleteBookingHandler(c *gin.Context) {
	b, err := h.Svc.CompleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// SyncHistoryHandler returns the full sync attempt log for a booking.
func (h *AdminHandler) SyncHistoryHandler(c *gin.Context) {
	logs, err := h.Svc.SyncHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// StatsHandler aggregates booking and slot counts. Defaults to the last 30
// days when no range is given.
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if q := c.Query("from"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, expected YYYY-MM-DD"})
			return
		}
		from = t
	}
	if q := c.Query("to"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, expected YYYY-MM-DD"})
			return
		}
		to = t.Add(24 * time.Hour)
	}

	stats, err := h.Svc.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ResyncHandler re-runs external sync for one booking and system. With a
// queue configured the retry is enqueued; otherwise it runs inline.
func (h *AdminHandler) ResyncHandler(c *gin.Context) {
	bookingID := c.Param("id")
	system := c.Param("system")
	if system != models.SyncSystemCalendar && system != models.SyncSystemCRM {
		c.JSON(http.StatusBadRequest, gin.H{"error": "system must be 'calendar' or 'crm'"})
		return
	}

	if h.Queue != nil {
		task, err := cron.NewSyncRetryTask(bookingID, system)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build retry task"})
			return
		}
		if _, err := h.Queue.EnqueueContext(c.Request.Context(), task); err != nil {
			utils.GetLogger().Error("failed to enqueue sync retry",
				zap.String("bookingId", bookingID), zap.String("system", system), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue retry"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "resync enqueued", "bookingId": bookingID, "system": system})
		return
	}

	outcome, err := h.Dispatcher.DispatchOne(c.Request.Context(), bookingID, system)
	if err != nil {
		if errors.Is(err, syncer.ErrUnknownSystem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}
