package models

import "time"

// Sync target systems.
const (
	SyncSystemCalendar = "calendar"
	SyncSystemCRM      = "crm"
)

// Sync attempt statuses.
const (
	SyncStatusPending = "pending"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
	SyncStatusSkipped = "skipped"
)

// SyncLog is an immutable audit record of one attempt to mirror a booking into
// an external system. Rows are append-only: a retry writes a new row, so the
// full history per (booking, system) pair is reconstructable by CreatedAt.
//
// Known metadata keys: "eventId", "hangoutLink" (calendar), "appointmentId" (crm).
type SyncLog struct {
	ID        string            `bson:"id" json:"id"`
	BookingID string            `bson:"bookingId" json:"bookingId"`
	System    string            `bson:"system" json:"system"`
	Action    string            `bson:"action" json:"action"` // e.g. "create_event", "create_appointment"
	Status    string            `bson:"status" json:"status"`
	Error     string            `bson:"error,omitempty" json:"error,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}
