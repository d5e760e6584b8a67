package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/queue"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/repository"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

const (
	venueID = 1
	courtID = 10
	userA   = 100
	userB   = 200
)

var day = schedule.MustDate("2025-03-14")

func window(t *testing.T, start, end string) schedule.TimeRange {
	t.Helper()
	r, err := schedule.ParseTimeRange(start, end)
	require.NoError(t, err)
	return r
}

func newStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	m := repository.NewMemoryStore()
	m.PutVenue(model.Venue{ID: venueID, Name: "Riverside", IsActive: true})
	m.PutCourt(model.Court{
		ID: courtID, VenueID: venueID, Name: "Court 1", Sport: "badminton",
		PricePerHourCents: 1200, Window: window(t, "06:00", "22:00"),
	})
	m.PutCourt(model.Court{
		ID: courtID + 1, VenueID: venueID, Name: "Court 2", Sport: "badminton",
		PricePerHourCents: 1200, Window: window(t, "08:00", "12:00"),
	})
	return m
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	got    chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{got: make(chan struct{}, 16)}
}

func (p *recordingPublisher) PublishReservation(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.got <- struct{}{}
	return nil
}

func (p *recordingPublisher) wait(t *testing.T) queue.ReservationEvent {
	t.Helper()
	select {
	case <-p.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func newTestService(t *testing.T, store ReservationStore, pub EventPublisher) *Service {
	t.Helper()
	m := newStore(t)
	if store == nil {
		store = m
	}
	return NewService(m, m, store, pub, Config{}, nil)
}

func admit(s *Service, rng schedule.TimeRange, requester uint64) (*model.Reservation, error) {
	return s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID, Date: day, Range: rng, RequesterID: requester, UserID: requester,
	})
}

func TestAdmit_Success(t *testing.T) {
	pub := newRecordingPublisher()
	s := newTestService(t, nil, pub)

	res, err := admit(s, window(t, "10:00", "11:30"), userA)
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, uint32(1800), res.PriceCents)
	assert.Equal(t, uint64(venueID), res.VenueID)

	ev := pub.wait(t)
	assert.Equal(t, queue.EventReservationConfirmed, ev.Type)
	assert.Equal(t, res.ID, ev.ReservationID)
	assert.Equal(t, "10:00", ev.StartTime)
	assert.Equal(t, "11:30", ev.EndTime)
	assert.NotEmpty(t, ev.EventID)
}

func TestAdmit_RejectsOverlapButAcceptsTouching(t *testing.T) {
	s := newTestService(t, nil, nil)

	_, err := admit(s, window(t, "10:00", "11:00"), userA)
	require.NoError(t, err)

	_, err = admit(s, window(t, "10:30", "11:30"), userB)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = admit(s, window(t, "11:00", "12:00"), userB)
	assert.NoError(t, err)
	_, err = admit(s, window(t, "09:00", "10:00"), userB)
	assert.NoError(t, err)
}

func TestAdmit_OperatingHours(t *testing.T) {
	s := newTestService(t, nil, nil)

	tests := []struct {
		name       string
		start, end string
		want       error
	}{
		{"starts before open", "05:00", "07:00", ErrOutOfHours},
		{"ends after close", "21:00", "23:00", ErrOutOfHours},
		{"exact open", "06:00", "07:00", nil},
		{"exact close", "21:00", "22:00", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := admit(s, window(t, tt.start, tt.end), userA)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdmit_Forbidden(t *testing.T) {
	s := newTestService(t, nil, nil)

	_, err := s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID, Date: day, Range: window(t, "10:00", "11:00"),
		RequesterID: userA, UserID: userB,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID, Date: day, Range: window(t, "10:00", "11:00"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdmit_NotFoundAndInvalid(t *testing.T) {
	m := newStore(t)
	m.PutCourt(model.Court{ID: 99, VenueID: 42, Name: "orphan", Window: window(t, "06:00", "22:00")})
	s := NewService(m, m, m, nil, Config{}, nil)

	_, err := s.Admit(context.Background(), AdmitRequest{
		CourtID: 12345, Date: day, Range: window(t, "10:00", "11:00"), RequesterID: userA, UserID: userA,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Admit(context.Background(), AdmitRequest{
		CourtID: 99, Date: day, Range: window(t, "10:00", "11:00"), RequesterID: userA, UserID: userA,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Admit(context.Background(), AdmitRequest{CourtID: courtID, Date: day, RequesterID: userA, UserID: userA})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAdmit_ConcurrentRequestsHaveOneWinner(t *testing.T) {
	s := newTestService(t, nil, nil)
	rng := window(t, "18:00", "19:00")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = admit(s, rng, uint64(1000+i))
		}()
	}
	close(start)
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotUnavailable):
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
}

func TestAdmit_DifferentCourtsAndDaysNeverConflict(t *testing.T) {
	s := newTestService(t, nil, nil)
	rng := window(t, "10:00", "11:00")

	_, err := admit(s, rng, userA)
	require.NoError(t, err)

	_, err = s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID + 1, Date: day, Range: rng, RequesterID: userB, UserID: userB,
	})
	assert.NoError(t, err)

	_, err = s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID, Date: schedule.MustDate("2025-03-15"), Range: rng, RequesterID: userB, UserID: userB,
	})
	assert.NoError(t, err)
}

type raceStore struct {
	*repository.MemoryStore
}

func (raceStore) InsertConfirmed(context.Context, *model.Reservation) error {
	return repository.ErrConflict
}

func TestAdmit_CommitRaceIsSlotUnavailable(t *testing.T) {
	s := newTestService(t, raceStore{repository.NewMemoryStore()}, nil)

	_, err := admit(s, window(t, "10:00", "11:00"), userA)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

type brokenStore struct {
	*repository.MemoryStore
}

var errDown = errors.New("connection refused")

func (brokenStore) ListConfirmed(context.Context, uint64, schedule.Date) ([]model.Reservation, error) {
	return nil, errDown
}

type brokenInsertStore struct {
	*repository.MemoryStore
}

func (brokenInsertStore) InsertConfirmed(context.Context, *model.Reservation) error {
	return repository.ErrLockTimeout
}

func TestAdmit_StoreFailureIsUnavailable(t *testing.T) {
	s := newTestService(t, brokenStore{repository.NewMemoryStore()}, nil)
	_, err := admit(s, window(t, "10:00", "11:00"), userA)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errDown)
	assert.NotErrorIs(t, err, ErrSlotUnavailable)

	s = newTestService(t, brokenInsertStore{repository.NewMemoryStore()}, nil)
	_, err = admit(s, window(t, "10:00", "11:00"), userA)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "unavailable", CodeOf(err))
}

type slowStore struct {
	*repository.MemoryStore
}

func (slowStore) InsertConfirmed(ctx context.Context, _ *model.Reservation) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAdmit_StoreTimeout(t *testing.T) {
	m := newStore(t)
	s := NewService(m, m, slowStore{m}, nil, Config{StoreTimeout: 20 * time.Millisecond}, nil)

	_, err := admit(s, window(t, "10:00", "11:00"), userA)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCourtAvailability(t *testing.T) {
	s := newTestService(t, nil, nil)

	ca, err := s.CourtAvailability(context.Background(), courtID, day)
	require.NoError(t, err)
	require.Len(t, ca.Slots, 16)
	assert.Len(t, ca.Available, 16)
	assert.Equal(t, "06:00-07:00", ca.Slots[0].Range.String())
	assert.Equal(t, uint32(1200), ca.Slots[0].PriceCents)

	_, err = admit(s, window(t, "10:30", "11:30"), userA)
	require.NoError(t, err)

	ca, err = s.CourtAvailability(context.Background(), courtID, day)
	require.NoError(t, err)
	require.Len(t, ca.Slots, 16)
	assert.Len(t, ca.Available, 14)
	for _, slot := range ca.Slots {
		want := slot.Range.String() != "10:00-11:00" && slot.Range.String() != "11:00-12:00"
		assert.Equal(t, want, slot.Available, slot.Range.String())
	}

	_, err = s.CourtAvailability(context.Background(), 777, day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourtAvailability_FullyBookedDayIsEmpty(t *testing.T) {
	s := newTestService(t, nil, nil)

	_, err := s.Admit(context.Background(), AdmitRequest{
		CourtID: courtID + 1, Date: day, Range: window(t, "08:00", "12:00"), RequesterID: userA, UserID: userA,
	})
	require.NoError(t, err)

	ca, err := s.CourtAvailability(context.Background(), courtID+1, day)
	require.NoError(t, err)
	assert.Empty(t, ca.Available)
	assert.Len(t, ca.Slots, 4)
}

func TestVenueAvailability(t *testing.T) {
	s := newTestService(t, nil, nil)

	list, err := s.VenueAvailability(context.Background(), venueID, day)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Court 1", list[0].Court.Name)
	assert.Len(t, list[1].Slots, 4)

	_, err = s.VenueAvailability(context.Background(), 4242, day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel(t *testing.T) {
	pub := newRecordingPublisher()
	s := newTestService(t, nil, pub)
	rng := window(t, "10:00", "11:00")

	res, err := admit(s, rng, userA)
	require.NoError(t, err)
	pub.wait(t)

	_, err = s.Cancel(context.Background(), res.ID, userB)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := s.Cancel(context.Background(), res.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, queue.EventReservationCancelled, pub.wait(t).Type)

	_, err = s.Cancel(context.Background(), res.ID, userA)
	assert.ErrorIs(t, err, ErrNotCancellable)
	_, err = s.Cancel(context.Background(), 9999, userA)
	assert.ErrorIs(t, err, ErrNotFound)

	// The freed slot can be booked again.
	_, err = admit(s, rng, userB)
	assert.NoError(t, err)
}

func TestGetAndList(t *testing.T) {
	s := newTestService(t, nil, nil)

	res, err := admit(s, window(t, "10:00", "11:00"), userA)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), res.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = s.Get(context.Background(), res.ID, userB)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := s.ListByUser(context.Background(), userA)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := s.ListByUser(context.Background(), userB)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "slot_unavailable", CodeOf(ErrSlotUnavailable))
	assert.Equal(t, "internal", CodeOf(errors.New("boom")))
	assert.Equal(t, "unavailable", CodeOf(unavailable("op", errDown)))
}
