package syncer

import (
	"context"

	bookingRepo "ledgerly/database/repository/booking"
	synclogRepo "ledgerly/database/repository/synclog"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
)

// Connector is the boundary to one external system. Implementations must be
// safe to call for a booking that was already mirrored; the dispatcher, not
// the connector, decides whether a retry is a no-op.
type Connector interface {
	System() string
	IsConnected(ctx context.Context) bool
	CreateRemoteRecord(ctx context.Context, booking *models.Booking, slot *models.TimeSlot) (externalID string, metadata map[string]string, err error)
}

// Outcome is the result of one sync attempt against one system.
type Outcome struct {
	Status     string            `json:"status"` // success | failed | skipped
	ExternalID string            `json:"externalId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Reason     string            `json:"reason,omitempty"` // skip reason or error message
}

// Result groups the per-system outcomes of one dispatch.
type Result struct {
	Calendar Outcome `json:"calendar"`
	CRM      Outcome `json:"crm"`
}

// Dispatcher mirrors committed bookings into the external systems. Dispatch
// never returns an error: every failure is downgraded to a recorded outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, booking *models.Booking) Result
	DispatchOne(ctx context.Context, bookingID, system string) (Outcome, error)
}

// DefaultSyncDispatcher implements Dispatcher over the configured connectors.
type DefaultSyncDispatcher struct {
	Calendar Connector
	CRM      Connector
	Logs     synclogRepo.SyncLogRepository
	Bookings bookingRepo.BookingRepository
	Slots    timeslotRepo.TimeSlotRepository
}
