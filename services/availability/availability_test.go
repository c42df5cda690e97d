package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityRepo "ledgerly/database/repository/availability"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
)

type fakeAvailRepo struct {
	mu    sync.Mutex
	items map[string]models.Availability
}

func newFakeAvailRepo() *fakeAvailRepo {
	return &fakeAvailRepo{items: make(map[string]models.Availability)}
}

func (f *fakeAvailRepo) Create(ctx context.Context, av *models.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[av.ID] = *av
	return nil
}

func (f *fakeAvailRepo) GetByID(ctx context.Context, id string) (*models.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	av, ok := f.items[id]
	if !ok {
		return nil, availabilityRepo.ErrNotFound
	}
	return &av, nil
}

func (f *fakeAvailRepo) Update(ctx context.Context, av *models.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[av.ID]; !ok {
		return availabilityRepo.ErrNotFound
	}
	f.items[av.ID] = *av
	return nil
}

func (f *fakeAvailRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return availabilityRepo.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAvailRepo) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Availability
	for _, av := range f.items {
		if filter.UserID != "" && av.UserID != filter.UserID {
			continue
		}
		if filter.Date != "" && av.Date != filter.Date {
			continue
		}
		out = append(out, av)
	}
	return out, nil
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]models.TimeSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]models.TimeSlot)}
}

func (f *fakeSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range slots {
		f.slots[s.ID] = s
	}
	return nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return nil, timeslotRepo.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSlotRepo) GetByAvailabilityID(ctx context.Context, availabilityID string) ([]models.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range f.slots {
		if s.AvailabilityID == availabilityID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) CountBooked(ctx context.Context, availabilityID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.slots {
		if s.AvailabilityID == availabilityID && s.Booked {
			n++
		}
	}
	return n, nil
}

func (f *fakeSlotRepo) DeleteByAvailabilityID(ctx context.Context, availabilityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.slots {
		if s.AvailabilityID == availabilityID {
			delete(f.slots, id)
		}
	}
	return nil
}

func (f *fakeSlotRepo) SetBooked(ctx context.Context, slotID string, booked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return timeslotRepo.ErrNotFound
	}
	s.Booked = booked
	f.slots[slotID] = s
	return nil
}

func (f *fakeSlotRepo) CountInRange(ctx context.Context, from, to time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, free int64
	for _, s := range f.slots {
		if s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		total++
		if !s.Booked {
			free++
		}
	}
	return total, free, nil
}

func newTestService() (*DefaultAvailabilityService, *fakeAvailRepo, *fakeSlotRepo) {
	availRepo := newFakeAvailRepo()
	slotRepo := newFakeSlotRepo()
	svc := &DefaultAvailabilityService{Repo: availRepo, Slots: slotRepo}
	return svc, availRepo, slotRepo
}

func windowRequest(durationMins, windowMins int) models.CreateAvailabilityRequest {
	start := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	return models.CreateAvailabilityRequest{
		UserID:       "staff-1",
		Date:         "2026-09-14",
		StartAt:      start,
		EndAt:        start.Add(time.Duration(windowMins) * time.Minute),
		SlotDuration: durationMins,
	}
}

func TestCreateGeneratesContiguousSlots(t *testing.T) {
	svc, _, slotRepo := newTestService()

	av, err := svc.Create(context.Background(), windowRequest(30, 8*60))
	require.NoError(t, err)
	require.Len(t, av.Slots, 16)

	stored, err := slotRepo.GetByAvailabilityID(context.Background(), av.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 16)

	for i, s := range av.Slots {
		assert.Equal(t, av.ID, s.AvailabilityID)
		assert.False(t, s.Booked)
		assert.Equal(t, 30*time.Minute, s.EndAt.Sub(s.StartAt))
		if i > 0 {
			assert.Equal(t, av.Slots[i-1].EndAt, s.StartAt, "slots must be contiguous")
		}
	}
	assert.Equal(t, av.StartAt, av.Slots[0].StartAt)
	assert.Equal(t, av.EndAt, av.Slots[len(av.Slots)-1].EndAt)
}

func TestCreateDropsPartialTrailingSlot(t *testing.T) {
	svc, _, _ := newTestService()

	// 100 minutes at 45-minute slots: only two whole slots fit.
	av, err := svc.Create(context.Background(), windowRequest(45, 100))
	require.NoError(t, err)
	require.Len(t, av.Slots, 2)
	assert.True(t, av.Slots[1].EndAt.Before(av.EndAt))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := windowRequest(30, 60)
	req.SlotDuration = 25
	_, err := svc.Create(ctx, req)
	var avErr *Error
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)

	req = windowRequest(30, 60)
	req.StartAt, req.EndAt = req.EndAt, req.StartAt
	_, err = svc.Create(ctx, req)
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)

	req = windowRequest(30, 60)
	req.Date = "14-09-2026"
	_, err = svc.Create(ctx, req)
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)
}

func TestCreateRejectsWindowOutsideDate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	var avErr *Error

	// Times a day after the filed date.
	req := windowRequest(30, 60)
	req.Date = "2026-09-13"
	_, err := svc.Create(ctx, req)
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)

	// Window spills past midnight.
	req = windowRequest(30, 60)
	req.StartAt = time.Date(2026, 9, 14, 23, 30, 0, 0, time.UTC)
	req.EndAt = time.Date(2026, 9, 15, 0, 30, 0, 0, time.UTC)
	_, err = svc.Create(ctx, req)
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)

	// Window ending exactly at midnight still belongs to the date.
	req = windowRequest(30, 60)
	req.StartAt = time.Date(2026, 9, 14, 23, 0, 0, 0, time.UTC)
	req.EndAt = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestUpdateRejectsWindowDriftingOffDate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	av, err := svc.Create(ctx, windowRequest(30, 60))
	require.NoError(t, err)

	start := av.StartAt.Add(24 * time.Hour)
	end := av.EndAt.Add(24 * time.Hour)
	_, err = svc.Update(ctx, av.ID, models.UpdateAvailabilityRequest{StartAt: &start, EndAt: &end})
	var avErr *Error
	require.ErrorAs(t, err, &avErr)
	assert.Equal(t, "Validation", avErr.Code)
}

func TestUpdateRegeneratesSlotsOnWindowChange(t *testing.T) {
	svc, _, slotRepo := newTestService()
	ctx := context.Background()

	av, err := svc.Create(ctx, windowRequest(30, 2*60))
	require.NoError(t, err)
	require.Len(t, av.Slots, 4)

	newDuration := 60
	updated, err := svc.Update(ctx, av.ID, models.UpdateAvailabilityRequest{SlotDuration: &newDuration})
	require.NoError(t, err)
	require.Len(t, updated.Slots, 2)
	assert.Equal(t, 60, updated.SlotDuration)

	stored, err := slotRepo.GetByAvailabilityID(ctx, av.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "old slots must be discarded")
}

func TestUpdateRejectedWhenSlotBooked(t *testing.T) {
	svc, _, slotRepo := newTestService()
	ctx := context.Background()

	av, err := svc.Create(ctx, windowRequest(30, 60))
	require.NoError(t, err)
	require.NoError(t, slotRepo.SetBooked(ctx, av.Slots[0].ID, true))

	newDuration := 60
	_, err = svc.Update(ctx, av.ID, models.UpdateAvailabilityRequest{SlotDuration: &newDuration})
	assert.ErrorIs(t, err, ErrHasBookedSlots)
}

func TestDeleteCascadesSlots(t *testing.T) {
	svc, availRepo, slotRepo := newTestService()
	ctx := context.Background()

	av, err := svc.Create(ctx, windowRequest(15, 60))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, av.ID))

	_, err = availRepo.GetByID(ctx, av.ID)
	assert.ErrorIs(t, err, availabilityRepo.ErrNotFound)
	stored, err := slotRepo.GetByAvailabilityID(ctx, av.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDeleteRejectedWhenSlotBooked(t *testing.T) {
	svc, _, slotRepo := newTestService()
	ctx := context.Background()

	av, err := svc.Create(ctx, windowRequest(30, 60))
	require.NoError(t, err)
	require.NoError(t, slotRepo.SetBooked(ctx, av.Slots[0].ID, true))

	err = svc.Delete(ctx, av.ID)
	assert.ErrorIs(t, err, ErrHasBookedSlots)

	// The window and its slots survive the rejected delete.
	stored, err := slotRepo.GetByAvailabilityID(ctx, av.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	newDuration := 30
	_, err := svc.Update(context.Background(), "missing", models.UpdateAvailabilityRequest{SlotDuration: &newDuration})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDayReturnsOnlyMatchingDate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, windowRequest(30, 60))
	require.NoError(t, err)

	other := windowRequest(30, 60)
	other.Date = "2026-09-15"
	other.StartAt = other.StartAt.Add(24 * time.Hour)
	other.EndAt = other.EndAt.Add(24 * time.Hour)
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	items, err := svc.ListDay(ctx, "2026-09-14")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2026-09-14", items[0].Date)
	assert.Len(t, items[0].Slots, 2)
}
