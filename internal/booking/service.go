// Package booking is the admission boundary for court reservations.  It
// validates booking requests against court existence, operating hours,
// the requester's identity and existing confirmed reservations, and
// commits through a ReservationStore that re-checks for overlap under
// its own isolation so two concurrent requests can never both win.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/queue"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/repository"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// CourtLookup resolves courts.  GetCourt returns repository.ErrCourtNotFound
// for unknown IDs.
type CourtLookup interface {
	GetCourt(ctx context.Context, id uint64) (*model.Court, error)
	ListByVenue(ctx context.Context, venueID uint64) ([]model.Court, error)
}

// VenueLookup resolves venues.  GetVenue returns repository.ErrVenueNotFound
// for unknown IDs.
type VenueLookup interface {
	GetVenue(ctx context.Context, id uint64) (*model.Venue, error)
}

// ReservationStore persists reservations.  InsertConfirmed must refuse,
// with repository.ErrConflict, a reservation that overlaps a confirmed
// reservation for the same court and date, and must make that check
// atomic with the insert.
type ReservationStore interface {
	ListConfirmed(ctx context.Context, courtID uint64, date schedule.Date) ([]model.Reservation, error)
	InsertConfirmed(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	Cancel(ctx context.Context, id uint64) (*model.Reservation, error)
}

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	PublishReservation(ctx context.Context, ev queue.ReservationEvent) error
}

// Config tunes slot generation and store timeouts.
type Config struct {
	SlotDuration time.Duration // length of generated slots; DefaultSlotDuration when zero
	StoreTimeout time.Duration // per-call deadline for store operations; none when zero
}

// Service implements availability queries and reservation admission.
// It keeps no per-request state and is safe for concurrent use.
type Service struct {
	courts    CourtLookup
	venues    VenueLookup
	store     ReservationStore
	publisher EventPublisher
	cfg       Config
	log       *zap.Logger
}

// NewService wires the collaborators.  publisher may be nil, in which case
// no events are emitted.  A nil logger is replaced with a no-op logger.
func NewService(courts CourtLookup, venues VenueLookup, store ReservationStore, publisher EventPublisher, cfg Config, log *zap.Logger) *Service {
	if courts == nil || venues == nil || store == nil {
		panic("nil dependency passed to booking.NewService")
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = schedule.DefaultSlotDuration
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{courts: courts, venues: venues, store: store, publisher: publisher, cfg: cfg, log: log}
}

// AdmitRequest is a validated booking request.  RequesterID is the
// authenticated caller; UserID is the user the booking is for.
type AdmitRequest struct {
	CourtID     uint64
	Date        schedule.Date
	Range       schedule.TimeRange
	RequesterID uint64
	UserID      uint64
}

// Admit validates req and commits a confirmed reservation.  Rejections are
// ErrNotFound, ErrOutOfHours, ErrForbidden, ErrSlotUnavailable and
// ErrInvalidRange; store failures and timeouts are ErrUnavailable.  A
// conflict detected by the store at commit time is ErrSlotUnavailable.
func (s *Service) Admit(ctx context.Context, req AdmitRequest) (*model.Reservation, error) {
	if req.CourtID == 0 || req.Date.IsZero() || req.Range.IsZero() {
		return nil, ErrInvalidRange
	}

	court, err := s.resolveCourt(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}

	if !court.Window.Contains(req.Range) {
		return nil, ErrOutOfHours
	}

	if req.RequesterID == 0 || req.RequesterID != req.UserID {
		return nil, ErrForbidden
	}

	booked, err := s.bookedRanges(ctx, court.ID, req.Date)
	if err != nil {
		return nil, err
	}
	if schedule.HasConflict(req.Range, booked) {
		return nil, ErrSlotUnavailable
	}

	res := &model.Reservation{
		CourtID:    court.ID,
		VenueID:    court.VenueID,
		UserID:     req.UserID,
		Date:       req.Date,
		Range:      req.Range,
		Status:     model.StatusConfirmed,
		PriceCents: court.PriceFor(req.Range),
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.InsertConfirmed(sctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.log.Info("admission lost commit race",
				zap.Uint64("court_id", court.ID),
				zap.String("date", req.Date.String()),
				zap.String("range", req.Range.String()),
			)
			return nil, ErrSlotUnavailable
		}
		return nil, unavailable("insert reservation", err)
	}

	s.log.Info("reservation admitted",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("court_id", res.CourtID),
		zap.Uint64("user_id", res.UserID),
		zap.String("date", res.Date.String()),
		zap.String("range", res.Range.String()),
	)
	s.publish(ctx, queue.EventReservationConfirmed, res)
	return res, nil
}

// Cancel moves the caller's confirmed reservation to cancelled, freeing its
// slot.  Reservations of other users are ErrForbidden; unknown IDs are
// ErrNotFound; anything not confirmed is ErrNotCancellable.
func (s *Service) Cancel(ctx context.Context, reservationID, requesterID uint64) (*model.Reservation, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	existing, err := s.store.GetByID(sctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load reservation", err)
	}
	if existing.UserID != requesterID {
		return nil, ErrForbidden
	}
	if existing.Status != model.StatusConfirmed {
		return nil, ErrNotCancellable
	}

	res, err := s.store.Cancel(sctx, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrNotCancellable
		case errors.Is(err, repository.ErrReservationNotFound):
			return nil, ErrNotFound
		}
		return nil, unavailable("cancel reservation", err)
	}

	s.log.Info("reservation cancelled",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("court_id", res.CourtID),
		zap.Uint64("user_id", res.UserID),
	)
	s.publish(ctx, queue.EventReservationCancelled, res)
	return res, nil
}

// Get returns a reservation owned by userID.  Reservations of other users
// are reported as ErrNotFound so their existence is not revealed.
func (s *Service) Get(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	res, err := s.store.GetByID(sctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load reservation", err)
	}
	if res.UserID != userID {
		return nil, ErrNotFound
	}
	return res, nil
}

// ListByUser returns all reservations of userID, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	items, err := s.store.ListByUser(sctx, userID)
	if err != nil {
		return nil, unavailable("list reservations", err)
	}
	return items, nil
}

// resolveCourt loads a court and checks its venue exists.
func (s *Service) resolveCourt(ctx context.Context, courtID uint64) (*model.Court, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	court, err := s.courts.GetCourt(sctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrCourtNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load court", err)
	}
	if _, err := s.venues.GetVenue(sctx, court.VenueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load venue", err)
	}
	return court, nil
}

// bookedRanges returns the ranges of confirmed reservations on a court-day.
func (s *Service) bookedRanges(ctx context.Context, courtID uint64, date schedule.Date) ([]schedule.TimeRange, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	rows, err := s.store.ListConfirmed(sctx, courtID, date)
	if err != nil {
		return nil, unavailable("list confirmed reservations", err)
	}
	out := make([]schedule.TimeRange, 0, len(rows))
	for _, r := range rows {
		if r.Status != model.StatusConfirmed {
			continue
		}
		out = append(out, r.Range)
	}
	return out, nil
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// publish emits ev in the background.  Broker failures are logged and
// never affect the outcome of the request that triggered them.
func (s *Service) publish(ctx context.Context, typ string, res *model.Reservation) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		CourtID:       res.CourtID,
		VenueID:       res.VenueID,
		UserID:        res.UserID,
		Date:          res.Date.String(),
		StartTime:     res.Range.Start().String(),
		EndTime:       res.Range.End().String(),
		PriceCents:    res.PriceCents,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func(ctx context.Context) {
		if err := s.publisher.PublishReservation(ctx, ev); err != nil {
			s.log.Warn("publish reservation event failed",
				zap.String("type", typ),
				zap.Uint64("reservation_id", ev.ReservationID),
				zap.Error(err),
			)
		}
	}(context.WithoutCancel(ctx))
}
