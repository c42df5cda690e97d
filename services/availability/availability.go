package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	availabilityRepo "ledgerly/database/repository/availability"
	"ledgerly/models"
	"ledgerly/utils"
)

const dayCacheTTL = 5 * time.Minute

func dayCacheKey(date string) string {
	return "availability:day:" + date
}

// Create validates the window, persists it, and generates its child slots.
func (s *DefaultAvailabilityService) Create(ctx context.Context, req models.CreateAvailabilityRequest) (*models.Availability, error) {
	if err := validateWindow(req.StartAt, req.EndAt, req.SlotDuration); err != nil {
		return nil, err
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", req.Date))
	}
	if err := validateDayAlignment(day, req.StartAt.UTC(), req.EndAt.UTC()); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	av := &models.Availability{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Date:         req.Date,
		StartAt:      req.StartAt.UTC(),
		EndAt:        req.EndAt.UTC(),
		SlotDuration: req.SlotDuration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, av); err != nil {
		return nil, fmt.Errorf("failed to create availability: %w", err)
	}

	slots := generateSlots(av.ID, av.StartAt, av.EndAt, av.SlotDuration)
	if len(slots) > 0 {
		if err := s.Slots.CreateMany(ctx, slots); err != nil {
			// Best-effort cleanup of the orphaned window before reporting.
			if delErr := s.Repo.Delete(ctx, av.ID); delErr != nil {
				utils.GetLogger().Error("failed to clean up availability after slot insert error",
					zap.String("availabilityId", av.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("failed to generate slots: %w", err)
		}
	}
	av.Slots = slots

	s.invalidateDay(ctx, av.Date)
	return av, nil
}

// Update patches the window. Rejected once any child slot is booked; a change
// to the window or duration discards and regenerates the (unbooked) slots.
func (s *DefaultAvailabilityService) Update(ctx context.Context, id string, patch models.UpdateAvailabilityRequest) (*models.Availability, error) {
	av, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	booked, err := s.Slots.CountBooked(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check booked slots: %w", err)
	}
	if booked > 0 {
		return nil, ErrHasBookedSlots
	}

	regenerate := false
	oldDate := av.Date
	if patch.Date != nil && *patch.Date != av.Date {
		if _, err := time.Parse("2006-01-02", *patch.Date); err != nil {
			return nil, NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", *patch.Date))
		}
		av.Date = *patch.Date
	}
	if patch.StartAt != nil {
		av.StartAt = patch.StartAt.UTC()
		regenerate = true
	}
	if patch.EndAt != nil {
		av.EndAt = patch.EndAt.UTC()
		regenerate = true
	}
	if patch.SlotDuration != nil {
		av.SlotDuration = *patch.SlotDuration
		regenerate = true
	}
	if err := validateWindow(av.StartAt, av.EndAt, av.SlotDuration); err != nil {
		return nil, err
	}
	day, err := time.Parse("2006-01-02", av.Date)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", av.Date))
	}
	if err := validateDayAlignment(day, av.StartAt, av.EndAt); err != nil {
		return nil, err
	}
	av.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, av); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	if regenerate {
		if err := s.Slots.DeleteByAvailabilityID(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to discard old slots: %w", err)
		}
		slots := generateSlots(id, av.StartAt, av.EndAt, av.SlotDuration)
		if len(slots) > 0 {
			if err := s.Slots.CreateMany(ctx, slots); err != nil {
				return nil, fmt.Errorf("failed to regenerate slots: %w", err)
			}
		}
		av.Slots = slots
	} else {
		slots, err := s.Slots.GetByAvailabilityID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load slots: %w", err)
		}
		av.Slots = slots
	}

	s.invalidateDay(ctx, oldDate)
	if av.Date != oldDate {
		s.invalidateDay(ctx, av.Date)
	}
	return av, nil
}

// Delete removes the window and its slots. Rejected once any slot is booked.
func (s *DefaultAvailabilityService) Delete(ctx context.Context, id string) error {
	av, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}

	booked, err := s.Slots.CountBooked(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check booked slots: %w", err)
	}
	if booked > 0 {
		return ErrHasBookedSlots
	}

	if err := s.Slots.DeleteByAvailabilityID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete slots: %w", err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}

	s.invalidateDay(ctx, av.Date)
	return nil
}

// List returns windows matching the filter, ordered by date then start, with
// slots attached.
func (s *DefaultAvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error) {
	items, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list availabilities: %w", err)
	}
	for i := range items {
		slots, err := s.Slots.GetByAvailabilityID(ctx, items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load slots for availability %s: %w", items[i].ID, err)
		}
		items[i].Slots = slots
	}
	return items, nil
}

// ListDay is the public booking-page listing for one date, served through the
// Redis cache when available.
func (s *DefaultAvailabilityService) ListDay(ctx context.Context, date string) ([]models.Availability, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, dayCacheKey(date)).Result(); err == nil {
			var items []models.Availability
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.List(ctx, models.AvailabilityFilter{Date: date})
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.Cache.Set(ctx, dayCacheKey(date), data, dayCacheTTL).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache day listing", zap.String("date", date), zap.Error(err))
			}
		}
	}
	return items, nil
}

func (s *DefaultAvailabilityService) getExisting(ctx context.Context, id string) (*models.Availability, error) {
	av, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}
	return av, nil
}

func (s *DefaultAvailabilityService) invalidateDay(ctx context.Context, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, dayCacheKey(date)).Err(); err != nil {
		utils.GetLogger().Warn("failed to invalidate day cache", zap.String("date", date), zap.Error(err))
	}
}

func validateWindow(startAt, endAt time.Time, durationMins int) error {
	if !startAt.Before(endAt) {
		return NewValidationError("window start must be before window end")
	}
	if !allowedSlotDurations[durationMins] {
		return NewValidationError(fmt.Sprintf("slot duration must be one of 15, 30, 45, 60 minutes, got %d", durationMins))
	}
	return nil
}

// validateDayAlignment requires the window to fall inside the UTC calendar day
// it is filed under. The day cache and listings key by that date, so a window
// whose times belong to a different day would never be invalidated or listed
// consistently.
func validateDayAlignment(day time.Time, startAt, endAt time.Time) error {
	nextDay := day.Add(24 * time.Hour)
	if startAt.Before(day) || !startAt.Before(nextDay) {
		return NewValidationError(fmt.Sprintf("window start %s is outside date %s",
			startAt.Format(time.RFC3339), day.Format("2006-01-02")))
	}
	if endAt.After(nextDay) {
		return NewValidationError(fmt.Sprintf("window end %s is outside date %s",
			endAt.Format(time.RFC3339), day.Format("2006-01-02")))
	}
	return nil
}
