package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "ledgerly/database/repository/booking"
	timeslotRepo "ledgerly/database/repository/timeslot"
	"ledgerly/models"
	"ledgerly/services/syncer"
)

// fakeStore models the transactional store: one mutex guards both slots and
// bookings so the conditional slot flip plus booking insert is atomic, the
// same guarantee the Mongo transaction gives.
type fakeStore struct {
	mu       sync.Mutex
	slots    map[string]models.TimeSlot
	bookings map[string]models.Booking
	// cancelErr makes the next CancelWithSlot fail without touching state,
	// the way an aborted transaction leaves the store.
	cancelErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:    make(map[string]models.TimeSlot),
		bookings: make(map[string]models.Booking),
	}
}

func (f *fakeStore) addSlot(start time.Time) models.TimeSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.TimeSlot{
		ID:             uuid.New().String(),
		AvailabilityID: "avail-1",
		StartAt:        start,
		EndAt:          start.Add(30 * time.Minute),
	}
	f.slots[s.ID] = s
	return s
}

// BookingRepository

func (f *fakeStore) CreateWithSlot(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[booking.SlotID]
	if !ok {
		return bookingRepo.ErrSlotNotFound
	}
	if slot.Booked {
		return bookingRepo.ErrSlotAlreadyBooked
	}
	slot.Booked = true
	f.slots[booking.SlotID] = slot
	f.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeStore) CancelWithSlot(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status == models.BookingStatusCancelled || b.Status == models.BookingStatusCompleted {
		return bookingRepo.ErrAlreadyFinalized
	}
	b.Status = models.BookingStatusCancelled
	f.bookings[id] = b
	if s, ok := f.slots[b.SlotID]; ok {
		s.Booked = false
		f.slots[b.SlotID] = s
	}
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.Status = status
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) SetExternalRef(ctx context.Context, id, system, externalID string, syncedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	switch system {
	case models.SyncSystemCalendar:
		b.CalendarEventID = externalID
		b.CalendarSyncedAt = &syncedAt
	case models.SyncSystemCRM:
		b.CRMRecordID = externalID
		b.CRMSyncedAt = &syncedAt
	}
	f.bookings[id] = b
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Email != "" && b.Email != filter.Email {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, b := range f.bookings {
		if b.CreatedAt.Before(from) || !b.CreatedAt.Before(to) {
			continue
		}
		counts[b.Status]++
	}
	return counts, nil
}

// TimeSlotRepository

func (f *fakeStore) CreateMany(ctx context.Context, slots []models.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range slots {
		f.slots[s.ID] = s
	}
	return nil
}

func (f *fakeStore) GetSlotByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return nil, timeslotRepo.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStore) GetByAvailabilityID(ctx context.Context, availabilityID string) ([]models.TimeSlot, error) {
	return nil, nil
}

func (f *fakeStore) CountBooked(ctx context.Context, availabilityID string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) DeleteByAvailabilityID(ctx context.Context, availabilityID string) error {
	return nil
}

func (f *fakeStore) SetBooked(ctx context.Context, slotID string, booked bool) error {
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

func (f *fakeStore) CountInRange(ctx context.Context, from, to time.Time) (int64, int64, error) {
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

type fakeSyncLogRepo struct {
	mu   sync.Mutex
	logs []models.SyncLog
}

func (f *fakeSyncLogRepo) Insert(ctx context.Context, entry *models.SyncLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeSyncLogRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.SyncLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncLog
	for _, l := range f.logs {
		if l.BookingID == bookingID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeSyncLogRepo) ListByBookingAndSystem(ctx context.Context, bookingID, system string) ([]models.SyncLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncLog
	for _, l := range f.logs {
		if l.BookingID == bookingID && l.System == system {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeSyncLogRepo) LatestPerSystem(ctx context.Context, bookingID string) (map[string]models.SyncLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.SyncLog)
	for _, l := range f.logs {
		if l.BookingID == bookingID {
			out[l.System] = l
		}
	}
	return out, nil
}

// fakeDispatcher returns a canned result and records what it was handed.
type fakeDispatcher struct {
	mu     sync.Mutex
	result syncer.Result
	calls  []string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, booking *models.Booking) syncer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, booking.ID)
	return f.result
}

func (f *fakeDispatcher) DispatchOne(ctx context.Context, bookingID, system string) (syncer.Outcome, error) {
	return syncer.Outcome{Status: models.SyncStatusSuccess}, nil
}

// slotView adapts fakeStore's slot methods to the TimeSlotRepository
// interface; GetByID clashes with the booking-side method on fakeStore.
type slotView struct{ *fakeStore }

func (v slotView) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	return v.fakeStore.GetSlotByID(ctx, slotID)
}

func newTestEngine(result syncer.Result) (*DefaultBookingService, *fakeStore, *fakeSyncLogRepo, *fakeDispatcher) {
	store := newFakeStore()
	logs := &fakeSyncLogRepo{}
	dispatcher := &fakeDispatcher{result: result}
	svc := &DefaultBookingService{
		Repo:       store,
		Slots:      slotView{store},
		SyncLogs:   logs,
		Dispatcher: dispatcher,
	}
	return svc, store, logs, dispatcher
}

func bothSucceed() syncer.Result {
	return syncer.Result{
		Calendar: syncer.Outcome{Status: models.SyncStatusSuccess, ExternalID: "evt-1"},
		CRM:      syncer.Outcome{Status: models.SyncStatusSuccess, ExternalID: "41"},
	}
}

func bookingRequest(slotID string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		SlotID:   slotID,
		FullName: "Dana Meyer",
		Email:    "dana@example.com",
		Phone:    "+49301234567",
		Timezone: "Europe/Berlin",
	}
}

func TestCreateBookingConfirmsAndDispatches(t *testing.T) {
	svc, store, _, dispatcher := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))

	resp, err := svc.CreateBooking(context.Background(), bookingRequest(slot.ID))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, resp.Booking.Status)
	assert.Equal(t, models.SyncStatusSuccess, resp.SyncStatus.Calendar)
	assert.Equal(t, models.SyncStatusSuccess, resp.SyncStatus.CRM)

	stored, err := store.GetSlotByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.Booked)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	assert.Equal(t, []string{resp.Booking.ID}, dispatcher.calls)
}

func TestCreateBookingExactlyOneWinnerUnderContention(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))

	const racers = 25
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), bookingRequest(slot.ID))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrSlotAlreadyBooked):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one booking may win the slot")
	assert.Equal(t, racers-1, conflicts)
	assert.Len(t, store.bookings, 1)
}

func TestCreateBookingUnknownSlot(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())

	_, err := svc.CreateBooking(context.Background(), bookingRequest("no-such-slot"))
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Empty(t, store.bookings)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))

	req := bookingRequest(slot.ID)
	req.Email = ""
	_, err := svc.CreateBooking(context.Background(), req)
	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, "Validation", bErr.Code)

	req = bookingRequest(slot.ID)
	req.Timezone = "Mars/OlympusMons"
	_, err = svc.CreateBooking(context.Background(), req)
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, "Validation", bErr.Code)

	// Validation failures never touch the slot.
	stored, err := store.GetSlotByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.Booked)
}

func TestCreateBookingSucceedsWhenSyncFails(t *testing.T) {
	result := syncer.Result{
		Calendar: syncer.Outcome{Status: models.SyncStatusFailed, Reason: "api timeout"},
		CRM:      syncer.Outcome{Status: models.SyncStatusSkipped, Reason: "crm_not_configured"},
	}
	svc, store, _, _ := newTestEngine(result)
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))

	resp, err := svc.CreateBooking(context.Background(), bookingRequest(slot.ID))
	require.NoError(t, err, "sync failures must not unwind the booking")
	assert.Equal(t, models.BookingStatusConfirmed, resp.Booking.Status)
	assert.Equal(t, models.SyncStatusFailed, resp.SyncStatus.Calendar)
	assert.Equal(t, models.SyncStatusSkipped, resp.SyncStatus.CRM)

	stored, err := store.GetSlotByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.Booked, "slot stays booked regardless of sync outcome")
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	stored, err := store.GetSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, stored.Booked)

	// The freed slot can be booked again.
	again, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)
	assert.NotEqual(t, resp.Booking.ID, again.Booking.ID)
}

func TestCancelFailureLeavesBookingAndSlotAgreed(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)

	store.cancelErr = errors.New("transaction aborted")
	_, err = svc.CancelBooking(ctx, resp.Booking.ID)
	require.Error(t, err)

	// The aborted cancel must not leave a half-applied state: the booking
	// stays confirmed and the slot stays booked.
	b, err := store.GetByID(ctx, resp.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	s, err := store.GetSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, s.Booked)

	// Once the store recovers, the same cancel succeeds and frees the slot.
	store.cancelErr = nil
	cancelled, err := svc.CancelBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	s, err = store.GetSlotByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, s.Booked)
}

func TestCancelTwiceRejected(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, resp.Booking.ID)
	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, "InvalidTransition", bErr.Code)
}

func TestCompleteOnlyFromConfirmed(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)

	done, err := svc.CompleteBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Status)

	// A completed booking cannot be cancelled or completed again.
	_, err = svc.CancelBooking(ctx, resp.Booking.ID)
	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, "InvalidTransition", bErr.Code)

	_, err = svc.CompleteBooking(ctx, resp.Booking.ID)
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, "InvalidTransition", bErr.Code)
}

func TestGetBookingJoinsSlotAndSyncState(t *testing.T) {
	svc, store, logs, _ := newTestEngine(bothSucceed())
	slot := store.addSlot(time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := svc.CreateBooking(ctx, bookingRequest(slot.ID))
	require.NoError(t, err)

	require.NoError(t, logs.Insert(ctx, &models.SyncLog{
		BookingID: resp.Booking.ID,
		System:    models.SyncSystemCalendar,
		Action:    "create_event",
		Status:    models.SyncStatusSuccess,
	}))

	detail, err := svc.GetBooking(ctx, resp.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Slot)
	assert.Equal(t, slot.ID, detail.Slot.ID)
	require.NotNil(t, detail.Calendar)
	assert.Equal(t, models.SyncStatusSuccess, detail.Calendar.Status)
	assert.Nil(t, detail.CRM)
}

func TestSyncHistoryUnknownBooking(t *testing.T) {
	svc, _, _, _ := newTestEngine(bothSucceed())
	_, err := svc.SyncHistory(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsCountsBookingsAndSlots(t *testing.T) {
	svc, store, _, _ := newTestEngine(bothSucceed())
	ctx := context.Background()

	day := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	first := store.addSlot(day)
	second := store.addSlot(day.Add(30 * time.Minute))
	store.addSlot(day.Add(time.Hour))

	respA, err := svc.CreateBooking(ctx, bookingRequest(first.ID))
	require.NoError(t, err)
	respB, err := svc.CreateBooking(ctx, bookingRequest(second.ID))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, respB.Booking.ID)
	require.NoError(t, err)
	_, err = svc.CompleteBooking(ctx, respA.Booking.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, day.Add(-time.Hour), day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBookings)
	assert.Equal(t, 0, stats.ConfirmedBookings)
	assert.Equal(t, 1, stats.CancelledBookings)
	assert.Equal(t, 1, stats.CompletedBookings)
	assert.Equal(t, 3, stats.TotalSlots)
	assert.Equal(t, 2, stats.FreeSlots)
}
