// File: database/repository/synclog/indexes.go
package synclogRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the synclogs collection.
func (r *mongoSyncLogRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Retry-history query pattern: one booking/system pair, time ordered.
		{
			Keys:    bson.D{{Key: "bookingId", Value: 1}, {Key: "system", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("booking_system_created_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create synclog indexes: %w", err)
	}
	return nil
}
