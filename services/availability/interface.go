package availability

import (
	"context"

	"github.com/go-redis/redis/v8"

	availabilityRepo "ledgerly/database/repository/availability"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
)

// Valid slot durations in minutes.
var allowedSlotDurations = map[int]bool{15: true, 30: true, 45: true, 60: true}

// AvailabilityService manages staff working windows and their generated slots.
type AvailabilityService interface {
	Create(ctx context.Context, req models.CreateAvailabilityRequest) (*models.Availability, error)
	Update(ctx context.Context, id string, patch models.UpdateAvailabilityRequest) (*models.Availability, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error)
	ListDay(ctx context.Context, date string) ([]models.Availability, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Repo  availabilityRepo.AvailabilityRepository
	Slots timeslotRepo.TimeSlotRepository
	// Cache is optional; when set, the public day listing is served through it.
	Cache *redis.Client
}
