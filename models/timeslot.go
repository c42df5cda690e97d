package models

import "time"

// TimeSlot is one fixed-duration bookable unit inside an Availability window.
// Booked flips to true exactly once, inside the booking transaction; it only
// reverts if the owning booking is cancelled.
type TimeSlot struct {
	ID             string    `bson:"id" json:"id"`
	AvailabilityID string    `bson:"availabilityId" json:"availabilityId"`
	StartAt        time.Time `bson:"startAt" json:"startAt"`
	EndAt          time.Time `bson:"endAt" json:"endAt"`
	Booked         bool      `bson:"booked" json:"booked"`
}
