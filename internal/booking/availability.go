package booking

import (
	"context"
	"errors"
	"slices"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/repository"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// SlotStatus is one generated slot annotated with its availability and
// the price of booking it.
type SlotStatus struct {
	Range      schedule.TimeRange
	Available  bool
	PriceCents uint32
}

// CourtAvailability lists every slot of a court on a date.
type CourtAvailability struct {
	Court     model.Court
	Date      schedule.Date
	Slots     []SlotStatus
	Available []schedule.TimeRange
}

// CourtAvailability computes the slots of one court on date.  Slots are
// generated from the court's operating window and marked unavailable when
// they overlap a confirmed reservation.
func (s *Service) CourtAvailability(ctx context.Context, courtID uint64, date schedule.Date) (*CourtAvailability, error) {
	if courtID == 0 || date.IsZero() {
		return nil, ErrInvalidRange
	}
	court, err := s.resolveCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	return s.availabilityFor(ctx, *court, date)
}

// VenueAvailability computes availability for every court of a venue,
// ordered as the court lookup returns them.
func (s *Service) VenueAvailability(ctx context.Context, venueID uint64, date schedule.Date) ([]CourtAvailability, error) {
	if venueID == 0 || date.IsZero() {
		return nil, ErrInvalidRange
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if _, err := s.venues.GetVenue(sctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load venue", err)
	}
	courts, err := s.courts.ListByVenue(sctx, venueID)
	if err != nil {
		return nil, unavailable("list courts", err)
	}

	out := make([]CourtAvailability, 0, len(courts))
	for _, c := range courts {
		ca, err := s.availabilityFor(ctx, c, date)
		if err != nil {
			return nil, err
		}
		out = append(out, *ca)
	}
	return out, nil
}

// ListCourts returns the courts of a venue.
func (s *Service) ListCourts(ctx context.Context, venueID uint64) ([]model.Court, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if _, err := s.venues.GetVenue(sctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load venue", err)
	}
	courts, err := s.courts.ListByVenue(sctx, venueID)
	if err != nil {
		return nil, unavailable("list courts", err)
	}
	return courts, nil
}

func (s *Service) availabilityFor(ctx context.Context, court model.Court, date schedule.Date) (*CourtAvailability, error) {
	seq, err := schedule.GenerateSlots(court.Window, s.cfg.SlotDuration)
	if err != nil {
		// A court stored with a broken window cannot be booked at all.
		return nil, unavailable("generate slots", err)
	}
	booked, err := s.bookedRanges(ctx, court.ID, date)
	if err != nil {
		return nil, err
	}

	free := slices.Collect(schedule.FilterAvailable(seq, booked))
	ca := &CourtAvailability{Court: court, Date: date, Available: free}
	for slot := range seq {
		ca.Slots = append(ca.Slots, SlotStatus{
			Range:      slot,
			Available:  slices.Contains(free, slot),
			PriceCents: court.PriceFor(slot),
		})
	}
	return ca, nil
}
