// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/database"
	"ledgerly/models"
)

// ErrNotFound is returned when no availability matches the given id.
var ErrNotFound = errors.New("availability not found")

type AvailabilityRepository interface {
	Create(ctx context.Context, av *models.Availability) error
	GetByID(ctx context.Context, id string) (*models.Availability, error)
	Update(ctx context.Context, av *models.Availability) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error)
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.MongoClient.Database("ledgerly")
	repo := &mongoAvailabilityRepo{
		coll: db.Collection("availabilities"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}
