package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/booking"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// AvailabilityHandler serves the public availability and court listing
// endpoints.  None of them require authentication.
type AvailabilityHandler struct {
	svc BookingService
	log *zap.Logger
}

// NewAvailabilityHandler constructs an AvailabilityHandler and panics if
// svc is nil.
func NewAvailabilityHandler(svc BookingService, log *zap.Logger) *AvailabilityHandler {
	if svc == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityHandler{svc: svc, log: log}
}

type slotResponse struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Available  bool   `json:"available"`
	PriceCents uint32 `json:"price_cents"`
}

type courtAvailabilityResponse struct {
	CourtID        uint64         `json:"court_id"`
	CourtName      string         `json:"court_name"`
	Sport          string         `json:"sport"`
	Date           string         `json:"date"`
	AvailableSlots []string       `json:"available_slots"`
	Slots          []slotResponse `json:"slots"`
}

func toCourtAvailability(ca booking.CourtAvailability) courtAvailabilityResponse {
	out := courtAvailabilityResponse{
		CourtID:        ca.Court.ID,
		CourtName:      ca.Court.Name,
		Sport:          ca.Court.Sport,
		Date:           ca.Date.String(),
		AvailableSlots: make([]string, 0, len(ca.Available)),
		Slots:          make([]slotResponse, 0, len(ca.Slots)),
	}
	for _, r := range ca.Available {
		out.AvailableSlots = append(out.AvailableSlots, r.String())
	}
	for _, s := range ca.Slots {
		out.Slots = append(out.Slots, slotResponse{
			Start:      s.Range.Start().String(),
			End:        s.Range.End().String(),
			Available:  s.Available,
			PriceCents: s.PriceCents,
		})
	}
	return out
}

// Query handles POST /v1/availability.  The body names exactly one of
// court_id or venue_id plus a date, and the response lists every court
// with its free slots:
//
//	{"courts": [{"court_id": 1, "available_slots": ["06:00-07:00", ...], ...}]}
func (h *AvailabilityHandler) Query(c echo.Context) error {
	var body struct {
		CourtID uint64 `json:"court_id"`
		VenueID uint64 `json:"venue_id"`
		Date    string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if (body.CourtID == 0) == (body.VenueID == 0) {
		return badRequest(c, "exactly one of court_id or venue_id is required")
	}
	date, err := schedule.ParseDate(body.Date)
	if err != nil {
		return writeError(c, h.log, booking.ErrInvalidRange)
	}

	ctx := c.Request().Context()
	var list []booking.CourtAvailability
	if body.CourtID != 0 {
		ca, err := h.svc.CourtAvailability(ctx, body.CourtID, date)
		if err != nil {
			return writeError(c, h.log, err)
		}
		list = []booking.CourtAvailability{*ca}
	} else {
		list, err = h.svc.VenueAvailability(ctx, body.VenueID, date)
		if err != nil {
			return writeError(c, h.log, err)
		}
	}

	courts := make([]courtAvailabilityResponse, 0, len(list))
	for _, ca := range list {
		courts = append(courts, toCourtAvailability(ca))
	}
	return c.JSON(http.StatusOK, echo.Map{"courts": courts})
}

// CourtAvailability handles GET /v1/courts/:id/availability?date=YYYY-MM-DD.
func (h *AvailabilityHandler) CourtAvailability(c echo.Context) error {
	courtID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	date, err := schedule.ParseDate(c.QueryParam("date"))
	if err != nil {
		return writeError(c, h.log, booking.ErrInvalidRange)
	}
	ca, err := h.svc.CourtAvailability(c.Request().Context(), courtID, date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCourtAvailability(*ca))
}

type courtResponse struct {
	ID                uint64 `json:"id"`
	VenueID           uint64 `json:"venue_id"`
	Name              string `json:"name"`
	Sport             string `json:"sport"`
	PricePerHourCents uint32 `json:"price_per_hour_cents"`
	OpensAt           string `json:"opens_at"`
	ClosesAt          string `json:"closes_at"`
}

// ListCourts handles GET /v1/venues/:id/courts.
func (h *AvailabilityHandler) ListCourts(c echo.Context) error {
	venueID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	courts, err := h.svc.ListCourts(c.Request().Context(), venueID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]courtResponse, 0, len(courts))
	for _, ct := range courts {
		out = append(out, courtResponse{
			ID:                ct.ID,
			VenueID:           ct.VenueID,
			Name:              ct.Name,
			Sport:             ct.Sport,
			PricePerHourCents: ct.PricePerHourCents,
			OpensAt:           ct.Window.Start().String(),
			ClosesAt:          ct.Window.End().String(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"venue_id": venueID, "courts": out})
}
