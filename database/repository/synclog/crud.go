// File: database/repository/synclog/crud.go
package synclogRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ledgerly/models"
)

func (r *mongoSyncLogRepo) Insert(ctx context.Context, entry *models.SyncLog) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert sync log: %w", err)
	}
	return nil
}

func (r *mongoSyncLogRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.SyncLog, error) {
	return r.list(ctx, bson.M{"bookingId": bookingID})
}

func (r *mongoSyncLogRepo) ListByBookingAndSystem(ctx context.Context, bookingID, system string) ([]models.SyncLog, error) {
	return r.list(ctx, bson.M{"bookingId": bookingID, "system": system})
}

func (r *mongoSyncLogRepo) list(ctx context.Context, query bson.M) ([]models.SyncLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.SyncLog
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode sync logs: %w", err)
	}
	return out, nil
}

// LatestPerSystem returns the most recent attempt for each system that has at
// least one row for the booking. Used by the admin booking projection.
func (r *mongoSyncLogRepo) LatestPerSystem(ctx context.Context, bookingID string) (map[string]models.SyncLog, error) {
	entries, err := r.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.SyncLog)
	for _, entry := range entries {
		prev, ok := latest[entry.System]
		if !ok || entry.CreatedAt.After(prev.CreatedAt) {
			latest[entry.System] = entry
		}
	}
	return latest, nil
}
