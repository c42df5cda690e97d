package booking

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	bookingRepo "ledgerly/database/repository/booking"
	synclogRepo "ledgerly/database/repository/synclog"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
	"ledgerly/services/syncer"
)

// BookingService is the booking transaction engine plus the thin admin
// reporting surface over bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResponse, error)
	GetBooking(ctx context.Context, id string) (*models.BookingDetail, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
	SyncHistory(ctx context.Context, bookingID string) ([]models.SyncLog, error)
	Stats(ctx context.Context, from, to time.Time) (*models.BookingStats, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo       bookingRepo.BookingRepository
	Slots      timeslotRepo.TimeSlotRepository
	SyncLogs   synclogRepo.SyncLogRepository
	Dispatcher syncer.Dispatcher
	// Cache is optional; when set, the availability day cache is invalidated
	// whenever a slot changes hands.
	Cache *redis.Client
}
