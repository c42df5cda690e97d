// File: database/repository/timeslot/crud.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ledgerly/models"
)

func (r *mongoTimeSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		docs[i] = slot
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to insert time slots: %w", err)
	}
	return nil
}

func (r *mongoTimeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.TimeSlot
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepo) GetByAvailabilityID(ctx context.Context, availabilityID string) ([]models.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"availabilityId": availabilityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots for availability %s: %w", availabilityID, err)
	}
	defer cursor.Close(ctx)

	var slots []models.TimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoTimeSlotRepo) CountBooked(ctx context.Context, availabilityID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"availabilityId": availabilityID, "booked": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count booked slots for availability %s: %w", availabilityID, err)
	}
	return count, nil
}

func (r *mongoTimeSlotRepo) DeleteByAvailabilityID(ctx context.Context, availabilityID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"availabilityId": availabilityID}); err != nil {
		return fmt.Errorf("failed to delete slots for availability %s: %w", availabilityID, err)
	}
	return nil
}

func (r *mongoTimeSlotRepo) SetBooked(ctx context.Context, slotID string, booked bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": slotID}, bson.M{"$set": bson.M{"booked": booked}})
	if err != nil {
		return fmt.Errorf("failed to update booked flag for slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoTimeSlotRepo) CountInRange(ctx context.Context, from, to time.Time) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rangeQuery := bson.M{"startAt": bson.M{"$gte": from, "$lt": to}}
	total, err := r.coll.CountDocuments(ctx, rangeQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count slots in range: %w", err)
	}

	free, err := r.coll.CountDocuments(ctx, bson.M{"startAt": bson.M{"$gte": from, "$lt": to}, "booked": false})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count free slots in range: %w", err)
	}
	return total, free, nil
}
