// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/database"
	"ledgerly/models"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotNotFound is returned by the booking transaction when the
	// referenced slot does not exist (stale client reference).
	ErrSlotNotFound = errors.New("time slot not found")
	// ErrSlotAlreadyBooked is returned when the conditional slot flip matched
	// nothing because another booking already holds the slot.
	ErrSlotAlreadyBooked = errors.New("time slot already booked")
	// ErrAlreadyFinalized is returned by the cancel transaction when the
	// booking is already cancelled or completed.
	ErrAlreadyFinalized = errors.New("booking already cancelled or completed")
)

type BookingRepository interface {
	// CreateWithSlot atomically flips the slot's booked flag and inserts the
	// booking. Exactly one of N concurrent calls for the same slot succeeds.
	CreateWithSlot(ctx context.Context, booking *models.Booking) error
	// CancelWithSlot atomically marks the booking cancelled and flips its
	// slot back to unbooked.
	CancelWithSlot(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetExternalRef(ctx context.Context, id, system, externalID string, syncedAt time.Time) error
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type mongoBookingRepo struct {
	bookingColl *mongo.Collection
	slotColl    *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository. The slot
// collection is needed because the booking transaction spans both.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("ledgerly")
	repo := &mongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		slotColl:    db.Collection("timeslots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}
