package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "ledgerly/database/repository/booking"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
)

// GetBooking returns the admin projection for one booking.
func (svc *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.BookingDetail, error) {
	b, err := svc.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := svc.buildDetail(ctx, *b)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// CancelBooking cancels a booking and frees its slot for rebooking. Policy:
// a cancelled appointment returns its slot to the pool immediately. The
// status flip and the slot release happen in one repo transaction so the two
// can never disagree.
func (svc *DefaultBookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := svc.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCancelled || b.Status == models.BookingStatusCompleted {
		return nil, NewTransitionError(b.Status, models.BookingStatusCancelled)
	}

	if err := svc.Repo.CancelWithSlot(ctx, id); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, bookingRepo.ErrAlreadyFinalized):
			return nil, NewTransitionError(b.Status, models.BookingStatusCancelled)
		default:
			return nil, fmt.Errorf("failed to cancel booking: %w", err)
		}
	}
	b.Status = models.BookingStatusCancelled

	svc.invalidateSlotDay(ctx, b.SlotID)
	return b, nil
}

// CompleteBooking marks a confirmed booking as completed.
func (svc *DefaultBookingService) CompleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := svc.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, NewTransitionError(b.Status, models.BookingStatusCompleted)
	}

	if err := svc.Repo.UpdateStatus(ctx, id, models.BookingStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	b.Status = models.BookingStatusCompleted
	return b, nil
}

// ListBookings returns the admin projection: each booking joined with its slot
// and the most recent sync attempt per system.
func (svc *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	bookings, err := svc.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	details := make([]models.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		detail, err := svc.buildDetail(ctx, b)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// SyncHistory returns every sync attempt for the booking, oldest first.
func (svc *DefaultBookingService) SyncHistory(ctx context.Context, bookingID string) ([]models.SyncLog, error) {
	if _, err := svc.getExisting(ctx, bookingID); err != nil {
		return nil, err
	}
	logs, err := svc.SyncLogs.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync history: %w", err)
	}
	return logs, nil
}

// Stats aggregates booking and slot counts over a date range.
func (svc *DefaultBookingService) Stats(ctx context.Context, from, to time.Time) (*models.BookingStats, error) {
	counts, err := svc.Repo.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	totalSlots, freeSlots, err := svc.Slots.CountInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}

	stats := &models.BookingStats{
		ConfirmedBookings: counts[models.BookingStatusConfirmed],
		CancelledBookings: counts[models.BookingStatusCancelled],
		CompletedBookings: counts[models.BookingStatusCompleted],
		TotalSlots:        int(totalSlots),
		FreeSlots:         int(freeSlots),
	}
	for _, n := range counts {
		stats.TotalBookings += n
	}
	return stats, nil
}

func (svc *DefaultBookingService) getExisting(ctx context.Context, id string) (*models.Booking, error) {
	b, err := svc.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return b, nil
}

func (svc *DefaultBookingService) buildDetail(ctx context.Context, b models.Booking) (models.BookingDetail, error) {
	detail := models.BookingDetail{Booking: b}

	slot, err := svc.Slots.GetByID(ctx, b.SlotID)
	if err == nil {
		detail.Slot = slot
	} else if !errors.Is(err, timeslotRepo.ErrNotFound) {
		return detail, fmt.Errorf("failed to load slot %s: %w", b.SlotID, err)
	}

	latest, err := svc.SyncLogs.LatestPerSystem(ctx, b.ID)
	if err != nil {
		return detail, fmt.Errorf("failed to load sync state for booking %s: %w", b.ID, err)
	}
	if entry, ok := latest[models.SyncSystemCalendar]; ok {
		detail.Calendar = &entry
	}
	if entry, ok := latest[models.SyncSystemCRM]; ok {
		detail.CRM = &entry
	}
	return detail, nil
}
