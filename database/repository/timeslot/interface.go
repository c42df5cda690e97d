// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/database"
	"ledgerly/models"
)

// ErrNotFound is returned when no slot matches the given id.
var ErrNotFound = errors.New("time slot not found")

type TimeSlotRepository interface {
	CreateMany(ctx context.Context, slots []models.TimeSlot) error
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	GetByAvailabilityID(ctx context.Context, availabilityID string) ([]models.TimeSlot, error)
	CountBooked(ctx context.Context, availabilityID string) (int64, error)
	DeleteByAvailabilityID(ctx context.Context, availabilityID string) error
	SetBooked(ctx context.Context, slotID string, booked bool) error
	CountInRange(ctx context.Context, from, to time.Time) (total, free int64, err error)
}

type mongoTimeSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo() TimeSlotRepository {
	db := database.MongoClient.Database("ledgerly")
	repo := &mongoTimeSlotRepo{
		coll: db.Collection("timeslots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}
