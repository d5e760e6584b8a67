package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/booking"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/idempotency"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// maxIdempotencyKeyLen bounds the Idempotency-Key header.
const maxIdempotencyKeyLen = 128

// IdempotencyStore is implemented by *idempotency.Store.
type IdempotencyStore interface {
	Begin(ctx context.Context, userID uint64, key string) (reservationID uint64, replay bool, err error)
	Complete(ctx context.Context, userID uint64, key string, reservationID uint64) error
	Abort(ctx context.Context, userID uint64, key string) error
}

// BookingHandler serves the authenticated booking endpoints.  All methods
// assume JWT authentication has already been performed by middleware and
// return 401 when the caller cannot be read from the context.
type BookingHandler struct {
	svc  BookingService
	idem IdempotencyStore // optional
	log  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.  idem may be nil, in which
// case Idempotency-Key headers are ignored.
func NewBookingHandler(svc BookingService, idem IdempotencyStore, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, idem: idem, log: log}
}

type createBookingRequest struct {
	CourtID   uint64 `json:"court_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	UserID    uint64 `json:"user_id"` // defaults to the caller
}

// toAdmitRequest validates the body.  Unparsable or inverted times and
// dates are booking.ErrInvalidRange.
func (r createBookingRequest) toAdmitRequest(requester uint64) (booking.AdmitRequest, error) {
	date, err := schedule.ParseDate(r.Date)
	if err != nil {
		return booking.AdmitRequest{}, booking.ErrInvalidRange
	}
	rng, err := schedule.ParseTimeRange(r.StartTime, r.EndTime)
	if err != nil {
		return booking.AdmitRequest{}, booking.ErrInvalidRange
	}
	userID := r.UserID
	if userID == 0 {
		userID = requester
	}
	return booking.AdmitRequest{
		CourtID:     r.CourtID,
		Date:        date,
		Range:       rng,
		RequesterID: requester,
		UserID:      userID,
	}, nil
}

// Create handles POST /v1/bookings.  A confirmed reservation is returned
// with 201.  With an Idempotency-Key header a retried request returns the
// reservation created by the first attempt with 200, and a retry racing an
// unfinished attempt gets 409 request_in_progress.
func (h *BookingHandler) Create(c echo.Context) error {
	requester, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.CourtID == 0 {
		return badRequest(c, "court_id is required")
	}
	req, err := body.toAdmitRequest(requester)
	if err != nil {
		return writeError(c, h.log, err)
	}

	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLen {
		return badRequest(c, "Idempotency-Key is too long")
	}
	claimed := false
	if key != "" && h.idem != nil {
		id, replay, err := h.idem.Begin(ctx, requester, key)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":   "request_in_progress",
				"message": "a request with this Idempotency-Key is still being processed",
			})
		case err != nil:
			// Without the key store the request is processed as if no key was sent.
			h.log.Warn("idempotency store unavailable", zap.Error(err))
		case replay:
			res, err := h.svc.Get(ctx, id, requester)
			if err != nil {
				return writeError(c, h.log, err)
			}
			c.Response().Header().Set("Idempotent-Replayed", "true")
			return c.JSON(http.StatusOK, toReservationResponse(*res))
		default:
			claimed = true
		}
	}

	res, err := h.svc.Admit(ctx, req)
	if err != nil {
		if claimed {
			if aerr := h.idem.Abort(context.WithoutCancel(ctx), requester, key); aerr != nil {
				h.log.Warn("release idempotency key failed", zap.Error(aerr))
			}
		}
		return writeError(c, h.log, err)
	}
	if claimed {
		if cerr := h.idem.Complete(context.WithoutCancel(ctx), requester, key, res.ID); cerr != nil {
			h.log.Warn("record idempotency key failed", zap.Uint64("reservation_id", res.ID), zap.Error(cerr))
		}
	}
	return c.JSON(http.StatusCreated, toReservationResponse(*res))
}

// List handles GET /v1/my-bookings.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]reservationResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toReservationResponse(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get handles GET /v1/bookings/:id.  Bookings of other users are 404.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	res, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(*res))
}

// Cancel handles DELETE /v1/bookings/:id.  The caller's confirmed booking
// is cancelled and its time becomes available again.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	res, err := h.svc.Cancel(c.Request().Context(), id, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(*res))
}
