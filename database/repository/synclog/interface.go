// File: database/repository/synclog/interface.go
package synclogRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/database"
	"ledgerly/models"
)

// SyncLogRepository is append-only: retries insert new rows, nothing mutates
// or deletes an existing attempt.
type SyncLogRepository interface {
	Insert(ctx context.Context, entry *models.SyncLog) error
	ListByBooking(ctx context.Context, bookingID string) ([]models.SyncLog, error)
	ListByBookingAndSystem(ctx context.Context, bookingID, system string) ([]models.SyncLog, error)
	LatestPerSystem(ctx context.Context, bookingID string) (map[string]models.SyncLog, error)
}

type mongoSyncLogRepo struct {
	coll *mongo.Collection
}

// NewMongoSyncLogRepo constructs a new MongoDB SyncLogRepository.
func NewMongoSyncLogRepo() SyncLogRepository {
	db := database.MongoClient.Database("ledgerly")
	repo := &mongoSyncLogRepo{
		coll: db.Collection("synclogs"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}
