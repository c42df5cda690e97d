// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"ledgerly/models"
)

// CreateWithSlot runs the booking-creation transaction: flip the slot's booked
// flag and insert the booking in one Mongo session. The conditional update
// (booked: false in the filter) is the authoritative double-booking guard; two
// concurrent requests for the same slot race on that single-document update
// and exactly one of them matches. WithTransaction retries transient write
// conflicts, so the loser's re-run sees booked=true and maps to
// ErrSlotAlreadyBooked instead of surfacing the conflict.
func (repo *mongoBookingRepo) CreateWithSlot(ctx context.Context, booking *models.Booking) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		// Distinguish "gone" from "taken" before attempting the flip.
		var slot models.TimeSlot
		if err := repo.slotColl.FindOne(sc, bson.M{"id": booking.SlotID}).Decode(&slot); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrSlotNotFound
			}
			return nil, fmt.Errorf("failed to load slot %s: %w", booking.SlotID, err)
		}

		res, err := repo.slotColl.UpdateOne(sc,
			bson.M{"id": booking.SlotID, "booked": false},
			bson.M{"$set": bson.M{"booked": true}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to flip booked flag for slot %s: %w", booking.SlotID, err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrSlotAlreadyBooked
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}
		return nil, nil
	}

	_, err = sess.WithTransaction(ctx, txnFn)
	return mapBookingTxnError(err)
}

// CancelWithSlot sets the booking to cancelled and releases its slot in one
// transaction, so the booked flag and the booking status cannot disagree when
// either write fails.
func (repo *mongoBookingRepo) CancelWithSlot(ctx context.Context, id string) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		var booking models.Booking
		if err := repo.bookingColl.FindOne(sc, bson.M{"id": id}).Decode(&booking); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
		}
		if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
			return nil, ErrAlreadyFinalized
		}

		update := bson.M{"$set": bson.M{"status": models.BookingStatusCancelled, "updatedAt": time.Now().UTC()}}
		if _, err := repo.bookingColl.UpdateOne(sc, bson.M{"id": id}, update); err != nil {
			return nil, fmt.Errorf("failed to cancel booking %s: %w", id, err)
		}

		// The slot may already be gone if its window was deleted; matching
		// zero documents is fine.
		if _, err := repo.slotColl.UpdateOne(sc, bson.M{"id": booking.SlotID}, bson.M{"$set": bson.M{"booked": false}}); err != nil {
			return nil, fmt.Errorf("failed to release slot %s: %w", booking.SlotID, err)
		}
		return nil, nil
	}

	_, err = sess.WithTransaction(ctx, txnFn)
	return mapCancelTxnError(err)
}

// mapBookingTxnError translates whatever escapes the booking transaction into
// the repository's sentinel contract.
func mapBookingTxnError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrSlotAlreadyBooked):
		return err
	case isTransientConflict(err):
		// WithTransaction already retried; a conflict that still escapes
		// means the slot stayed contended for the whole retry window, which
		// is a lost race.
		return ErrSlotAlreadyBooked
	default:
		return fmt.Errorf("booking transaction failed: %w", err)
	}
}

func mapCancelTxnError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyFinalized):
		return err
	default:
		return fmt.Errorf("cancel transaction failed: %w", err)
	}
}

// isTransientConflict reports whether the error carries the driver's
// transient-transaction label (a write conflict between overlapping
// transactions).
func isTransientConflict(err error) bool {
	var srvErr mongo.ServerError
	return errors.As(err, &srvErr) && srvErr.HasErrorLabel("TransientTransactionError")
}
