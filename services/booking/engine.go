package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "ledgerly/database/repository/booking"
	"ledgerly/models"
	"ledgerly/utils"
)

// CreateBooking runs the booking transaction and then hands the committed
// booking to the sync dispatcher. The transaction (slot flip + booking
// insert) either fully commits or fully aborts; sync runs strictly after
// commit and its failures never unwind the booking.
func (svc *DefaultBookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResponse, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:        uuid.New().String(),
		SlotID:    req.SlotID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Status:    models.BookingStatusPending,
		Timezone:  req.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.Repo.CreateWithSlot(ctx, booking); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, bookingRepo.ErrSlotAlreadyBooked):
			return nil, ErrSlotAlreadyBooked
		default:
			return nil, fmt.Errorf("booking transaction failed: %w", err)
		}
	}

	// Confirmation is local-only: nothing external gates it, so the booking
	// is advanced as soon as the write has committed.
	if err := svc.Repo.UpdateStatus(ctx, booking.ID, models.BookingStatusConfirmed); err != nil {
		utils.GetLogger().Error("failed to confirm committed booking",
			zap.String("bookingId", booking.ID), zap.Error(err))
	} else {
		booking.Status = models.BookingStatusConfirmed
	}

	svc.invalidateSlotDay(ctx, booking.SlotID)

	result := svc.Dispatcher.Dispatch(ctx, booking)
	return &models.BookingResponse{
		Booking: booking,
		SyncStatus: models.SyncStatus{
			Calendar: result.Calendar.Status,
			CRM:      result.CRM.Status,
		},
	}, nil
}

func validateBookingRequest(req models.CreateBookingRequest) error {
	if req.SlotID == "" {
		return NewValidationError("slotId is required")
	}
	if req.FullName == "" {
		return NewValidationError("fullName is required")
	}
	if req.Email == "" {
		return NewValidationError("email is required")
	}
	if req.Phone == "" {
		return NewValidationError("phone is required")
	}
	if req.Timezone == "" {
		return NewValidationError("timezone is required")
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return NewValidationError(fmt.Sprintf("unknown timezone %q", req.Timezone))
	}
	return nil
}

// invalidateSlotDay drops the cached public day listing for the slot's date.
func (svc *DefaultBookingService) invalidateSlotDay(ctx context.Context, slotID string) {
	if svc.Cache == nil {
		return
	}
	slot, err := svc.Slots.GetByID(ctx, slotID)
	if err != nil {
		return
	}
	key := "availability:day:" + slot.StartAt.Format("2006-01-02")
	if err := svc.Cache.Del(ctx, key).Err(); err != nil {
		utils.GetLogger().Warn("failed to invalidate day cache", zap.String("key", key), zap.Error(err))
	}
}
