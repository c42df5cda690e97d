package models

import "time"

// Availability represents one staff member's declared working window on a date.
// Its TimeSlots are generated when the window is created and live in their own
// collection; Slots is populated on reads for client consumption.
type Availability struct {
	ID           string    `bson:"id" json:"id"`
	UserID       string    `bson:"userId" json:"userId"`
	Date         string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	StartAt      time.Time `bson:"startAt" json:"startAt"`
	EndAt        time.Time `bson:"endAt" json:"endAt"`
	SlotDuration int       `bson:"slotDuration" json:"slotDuration"` // minutes per slot
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	Slots []TimeSlot `bson:"-" json:"slots,omitempty"`
}

// CreateAvailabilityRequest is the staff payload for declaring a bookable window.
type CreateAvailabilityRequest struct {
	UserID       string    `json:"userId" binding:"required"`
	Date         string    `json:"date" binding:"required"`
	StartAt      time.Time `json:"startAt" binding:"required"`
	EndAt        time.Time `json:"endAt" binding:"required"`
	SlotDuration int       `json:"slotDuration" binding:"required"`
}

// UpdateAvailabilityRequest patches an existing window. Nil fields are left
// untouched; a change to the window or duration regenerates the (unbooked) slots.
type UpdateAvailabilityRequest struct {
	Date         *string    `json:"date,omitempty"`
	StartAt      *time.Time `json:"startAt,omitempty"`
	EndAt        *time.Time `json:"endAt,omitempty"`
	SlotDuration *int       `json:"slotDuration,omitempty"`
}

// AvailabilityFilter narrows availability listings.
type AvailabilityFilter struct {
	UserID string
	Date   string
}
