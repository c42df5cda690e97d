// File: database/repository/timeslot/indexes.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the timeslots collection.
func (r *mongoTimeSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: slots of one availability, ordered by start.
		{
			Keys:    bson.D{{Key: "availabilityId", Value: 1}, {Key: "startAt", Value: 1}},
			Options: options.Index().SetName("availability_start_idx"),
		},
		// Booked-flag filtering for HasBookedSlots checks and free-slot counts.
		{
			Keys:    bson.D{{Key: "availabilityId", Value: 1}, {Key: "booked", Value: 1}},
			Options: options.Index().SetName("availability_booked_idx"),
		},
		{
			Keys:    bson.D{{Key: "startAt", Value: 1}, {Key: "booked", Value: 1}},
			Options: options.Index().SetName("start_booked_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}
