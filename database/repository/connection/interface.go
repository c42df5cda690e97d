// File: database/repository/connection/interface.go
package connectionRepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/database"
	"ledgerly/models"
)

// ErrNotFound is returned when no connection exists for the given system.
var ErrNotFound = errors.New("connection not found")

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *models.Connection) error
	GetBySystem(ctx context.Context, system string) (*models.Connection, error)
	Deactivate(ctx context.Context, system string) error
}

type mongoConnectionRepo struct {
	coll *mongo.Collection
}

// NewMongoConnectionRepo constructs a new MongoDB ConnectionRepository.
func NewMongoConnectionRepo() ConnectionRepository {
	db := database.MongoClient.Database("ledgerly")
	repo := &mongoConnectionRepo{
		coll: db.Collection("connections"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}
