package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerly/models"
	"ledgerly/utils"
)

const connectorTimeout = 30 * time.Second

var systemActions = map[string]string{
	models.SyncSystemCalendar: "create_event",
	models.SyncSystemCRM:      "create_appointment",
}

// ErrUnknownSystem rejects a retry request for a system tag we do not sync.
var ErrUnknownSystem = errors.New("unknown sync system")

// Dispatch mirrors the booking into the calendar and the CRM. The two systems
// are independent: a failure on one never prevents the attempt on the other,
// and no failure here propagates to the caller. One SyncLog row is appended
// per attempted system.
func (d *DefaultSyncDispatcher) Dispatch(ctx context.Context, booking *models.Booking) Result {
	slot, err := d.Slots.GetByID(ctx, booking.SlotID)
	if err != nil {
		// Without the slot there is nothing to put on a calendar; record the
		// failure against both systems so the attempt is auditable.
		reason := fmt.Sprintf("failed to load slot %s: %v", booking.SlotID, err)
		return Result{
			Calendar: d.recordFailure(ctx, booking, models.SyncSystemCalendar, reason),
			CRM:      d.recordFailure(ctx, booking, models.SyncSystemCRM, reason),
		}
	}

	return Result{
		Calendar: d.dispatchSystem(ctx, booking, slot, models.SyncSystemCalendar, d.Calendar),
		CRM:      d.dispatchSystem(ctx, booking, slot, models.SyncSystemCRM, d.CRM),
	}
}

// DispatchOne re-runs sync for a single (booking, system) pair. Used by the
// manual admin retry and the background retry worker. A booking that already
// carries an external id for the system is a no-op.
func (d *DefaultSyncDispatcher) DispatchOne(ctx context.Context, bookingID, system string) (Outcome, error) {
	booking, err := d.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	var connector Connector
	switch system {
	case models.SyncSystemCalendar:
		if booking.CalendarEventID != "" {
			return Outcome{Status: models.SyncStatusSkipped, Reason: "already_synced", ExternalID: booking.CalendarEventID}, nil
		}
		connector = d.Calendar
	case models.SyncSystemCRM:
		if booking.CRMRecordID != "" {
			return Outcome{Status: models.SyncStatusSkipped, Reason: "already_synced", ExternalID: booking.CRMRecordID}, nil
		}
		connector = d.CRM
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownSystem, system)
	}

	slot, err := d.Slots.GetByID(ctx, booking.SlotID)
	if err != nil {
		return d.recordFailure(ctx, booking, system, fmt.Sprintf("failed to load slot %s: %v", booking.SlotID, err)), nil
	}
	return d.dispatchSystem(ctx, booking, slot, system, connector), nil
}

func (d *DefaultSyncDispatcher) dispatchSystem(ctx context.Context, booking *models.Booking, slot *models.TimeSlot, system string, connector Connector) Outcome {
	logger := utils.GetLogger()

	if connector == nil || !connector.IsConnected(ctx) {
		reason := system + "_not_configured"
		d.appendLog(ctx, &models.SyncLog{
			BookingID: booking.ID,
			System:    system,
			Action:    systemActions[system],
			Status:    models.SyncStatusFailed,
			Error:     fmt.Sprintf("%s connector not configured or not connected", system),
		})
		return Outcome{Status: models.SyncStatusSkipped, Reason: reason}
	}

	callCtx, cancel := context.WithTimeout(ctx, connectorTimeout)
	defer cancel()

	externalID, metadata, err := connector.CreateRemoteRecord(callCtx, booking, slot)
	if err != nil {
		// Timeouts and connector errors are the same thing here: a failed
		// attempt, recorded and retryable. Mirror fields stay untouched so the
		// last-known-good state survives for a later retry.
		logger.Warn("sync attempt failed",
			zap.String("bookingId", booking.ID),
			zap.String("system", system),
			zap.Error(err))
		return d.recordFailure(ctx, booking, system, err.Error())
	}

	now := time.Now().UTC()
	if err := d.Bookings.SetExternalRef(ctx, booking.ID, system, externalID, now); err != nil {
		logger.Error("failed to store external ref",
			zap.String("bookingId", booking.ID),
			zap.String("system", system),
			zap.Error(err))
	} else {
		switch system {
		case models.SyncSystemCalendar:
			booking.CalendarEventID = externalID
			booking.CalendarSyncedAt = &now
		case models.SyncSystemCRM:
			booking.CRMRecordID = externalID
			booking.CRMSyncedAt = &now
		}
	}

	d.appendLog(ctx, &models.SyncLog{
		BookingID: booking.ID,
		System:    system,
		Action:    systemActions[system],
		Status:    models.SyncStatusSuccess,
		Metadata:  metadata,
	})
	return Outcome{Status: models.SyncStatusSuccess, ExternalID: externalID, Metadata: metadata}
}

func (d *DefaultSyncDispatcher) recordFailure(ctx context.Context, booking *models.Booking, system, errMsg string) Outcome {
	d.appendLog(ctx, &models.SyncLog{
		BookingID: booking.ID,
		System:    system,
		Action:    systemActions[system],
		Status:    models.SyncStatusFailed,
		Error:     errMsg,
	})
	return Outcome{Status: models.SyncStatusFailed, Reason: errMsg}
}

// appendLog writes the audit row; the dispatch outcome stands even if the
// write fails, so log errors are only logged.
func (d *DefaultSyncDispatcher) appendLog(ctx context.Context, entry *models.SyncLog) {
	if err := d.Logs.Insert(ctx, entry); err != nil {
		utils.GetLogger().Error("failed to append sync log",
			zap.String("bookingId", entry.BookingID),
			zap.String("system", entry.System),
			zap.Error(err))
	}
}
