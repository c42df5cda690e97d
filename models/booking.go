package models

import "time"

// Booking lifecycle statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking is a customer's confirmed appointment against exactly one TimeSlot.
// The calendar/CRM fields mirror the last-known-good external state; they are
// only written on a successful sync so a failed retry never clobbers them.
type Booking struct {
	ID       string `bson:"id" json:"id"`
	SlotID   string `bson:"slotId" json:"slotId"`
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone" json:"phone"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
	Status   string `bson:"status" json:"status"`
	Timezone string `bson:"timezone" json:"timezone"`

	CalendarEventID  string     `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	CalendarSyncedAt *time.Time `bson:"calendarSyncedAt,omitempty" json:"calendarSyncedAt,omitempty"`
	CRMRecordID      string     `bson:"crmRecordId,omitempty" json:"crmRecordId,omitempty"`
	CRMSyncedAt      *time.Time `bson:"crmSyncedAt,omitempty" json:"crmSyncedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateBookingRequest is the customer-facing booking payload.
type CreateBookingRequest struct {
	SlotID   string `json:"slotId" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Notes    string `json:"notes,omitempty"`
	Timezone string `json:"timezone" binding:"required"`
}

// BookingResponse pairs the committed booking with the immediate per-system
// sync status for UI feedback. The full attempt history lives in SyncLog.
type BookingResponse struct {
	Booking    *Booking   `json:"booking"`
	SyncStatus SyncStatus `json:"syncStatus"`
}

// SyncStatus is the compact per-system view surfaced to the booking client.
type SyncStatus struct {
	Calendar string `json:"calendar"`
	CRM      string `json:"crm"`
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	Status   string
	Email    string
	DateFrom time.Time
	DateTo   time.Time
}

// BookingDetail is the admin projection: the booking joined with its slot and
// the most recent sync attempt per system.
type BookingDetail struct {
	Booking  Booking   `json:"booking"`
	Slot     *TimeSlot `json:"slot,omitempty"`
	Calendar *SyncLog  `json:"lastCalendarSync,omitempty"`
	CRM      *SyncLog  `json:"lastCrmSync,omitempty"`
}

// BookingStats aggregates booking and slot counts over a date range.
type BookingStats struct {
	TotalBookings     int `json:"totalBookings"`
	ConfirmedBookings int `json:"confirmedBookings"`
	CancelledBookings int `json:"cancelledBookings"`
	CompletedBookings int `json:"completedBookings"`
	TotalSlots        int `json:"totalSlots"`
	FreeSlots         int `json:"freeSlots"`
}
