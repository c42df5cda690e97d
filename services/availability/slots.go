package availability

import (
	"time"

	"github.com/google/uuid"

	"ledgerly/models"
)

// generateSlots partitions the window [startAt, endAt) into contiguous
// whole-duration slots. A trailing remainder shorter than the duration is
// dropped, so the count is always floor(window / duration).
func generateSlots(availabilityID string, startAt, endAt time.Time, durationMins int) []models.TimeSlot {
	slotLen := time.Duration(durationMins) * time.Minute

	var slots []models.TimeSlot
	for s := startAt; !s.Add(slotLen).After(endAt); s = s.Add(slotLen) {
		slots = append(slots, models.TimeSlot{
			ID:             uuid.New().String(),
			AvailabilityID: availabilityID,
			StartAt:        s,
			EndAt:          s.Add(slotLen),
			Booked:         false,
		})
	}
	return slots
}
