package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// MemoryStore keeps venues, courts and reservations in process memory.
// It implements the same lookups and the same commit-time overlap
// guarantee as the MySQL repositories: InsertConfirmed checks and inserts
// under one lock, so concurrent admissions for a court-day are serialized
// and exactly one of any overlapping set succeeds.  Used with
// STORE_DRIVER=memory and in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	venues       map[uint64]model.Venue
	courts       map[uint64]model.Court
	reservations map[uint64]*model.Reservation
	byCourtDay   map[courtDay][]uint64
	nextID       uint64
	now          func() time.Time
}

type courtDay struct {
	courtID uint64
	date    schedule.Date
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		venues:       make(map[uint64]model.Venue),
		courts:       make(map[uint64]model.Court),
		reservations: make(map[uint64]*model.Reservation),
		byCourtDay:   make(map[courtDay][]uint64),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PutVenue inserts or replaces a venue.
func (m *MemoryStore) PutVenue(v model.Venue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.venues[v.ID] = v
}

// PutCourt inserts or replaces a court.
func (m *MemoryStore) PutCourt(c model.Court) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courts[c.ID] = c
}

// GetVenue returns the venue with the given ID or ErrVenueNotFound.
func (m *MemoryStore) GetVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, ErrVenueNotFound
	}
	return &v, nil
}

// GetCourt returns the court with the given ID or ErrCourtNotFound.
func (m *MemoryStore) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courts[id]
	if !ok {
		return nil, ErrCourtNotFound
	}
	return &c, nil
}

// ListByVenue returns the courts of a venue ordered by name.
func (m *MemoryStore) ListByVenue(ctx context.Context, venueID uint64) ([]model.Court, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Court{}
	for _, c := range m.courts {
		if c.VenueID == venueID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b model.Court) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// ListConfirmed returns the confirmed reservations of a court-day ordered
// by start time.
func (m *MemoryStore) ListConfirmed(ctx context.Context, courtID uint64, date schedule.Date) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.confirmedLocked(courtDay{courtID: courtID, date: date})
	slices.SortFunc(out, func(a, b model.Reservation) int {
		return cmp.Compare(a.Range.Start().Minutes(), b.Range.Start().Minutes())
	})
	return out, nil
}

func (m *MemoryStore) confirmedLocked(key courtDay) []model.Reservation {
	out := []model.Reservation{}
	for _, id := range m.byCourtDay[key] {
		if r := m.reservations[id]; r.Status == model.StatusConfirmed {
			out = append(out, *r)
		}
	}
	return out
}

// InsertConfirmed stores res as confirmed unless it overlaps a confirmed
// reservation of the same court-day, in which case ErrConflict is
// returned and nothing is written.
func (m *MemoryStore) InsertConfirmed(ctx context.Context, res *model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := courtDay{courtID: res.CourtID, date: res.Date}
	for _, existing := range m.confirmedLocked(key) {
		if existing.Range.Overlaps(res.Range) {
			return ErrConflict
		}
	}

	m.nextID++
	now := m.now()
	res.ID = m.nextID
	res.Status = model.StatusConfirmed
	res.CreatedAt = now
	res.UpdatedAt = now
	stored := *res
	m.reservations[stored.ID] = &stored
	m.byCourtDay[key] = append(m.byCourtDay[key], stored.ID)
	return nil
}

// GetByID returns a reservation or ErrReservationNotFound.
func (m *MemoryStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

// ListByUser returns a user's reservations, newest booking first.
func (m *MemoryStore) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Reservation{}
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b model.Reservation) int {
		return cmp.Or(
			cmp.Compare(b.Date.String(), a.Date.String()),
			cmp.Compare(b.Range.Start().Minutes(), a.Range.Start().Minutes()),
			cmp.Compare(b.ID, a.ID),
		)
	})
	return out, nil
}

// Cancel moves a confirmed reservation to cancelled.  It returns
// ErrConflict when the reservation is in any other state.
func (m *MemoryStore) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if r.Status != model.StatusConfirmed {
		return nil, ErrConflict
	}
	r.Status = model.StatusCancelled
	r.UpdatedAt = m.now()
	cp := *r
	return &cp, nil
}
