package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/booking"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/middleware"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// BookingService is the part of booking.Service the handlers use.
type BookingService interface {
	Admit(ctx context.Context, req booking.AdmitRequest) (*model.Reservation, error)
	Cancel(ctx context.Context, reservationID, requesterID uint64) (*model.Reservation, error)
	Get(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	CourtAvailability(ctx context.Context, courtID uint64, date schedule.Date) (*booking.CourtAvailability, error)
	VenueAvailability(ctx context.Context, venueID uint64, date schedule.Date) ([]booking.CourtAvailability, error)
	ListCourts(ctx context.Context, venueID uint64) ([]model.Court, error)
}

// statusOf maps a booking rejection to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrOutOfHours):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrSlotUnavailable), errors.Is(err, booking.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": code, "message": text}.  Failures
// that are not booking rejections are logged and hidden from the client.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	status := statusOf(err)
	var be *booking.Error
	if !errors.As(err, &be) {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal", "message": "internal error"})
	}
	if status == http.StatusServiceUnavailable {
		log.Warn("booking backend unavailable", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": be.Code, "message": be.Message})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
}

// getUserID returns the authenticated caller set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

type reservationResponse struct {
	ID         uint64 `json:"id"`
	CourtID    uint64 `json:"court_id"`
	VenueID    uint64 `json:"venue_id"`
	UserID     uint64 `json:"user_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	PriceCents uint32 `json:"price_cents"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toReservationResponse(r model.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		CourtID:    r.CourtID,
		VenueID:    r.VenueID,
		UserID:     r.UserID,
		Date:       r.Date.String(),
		StartTime:  r.Range.Start().String(),
		EndTime:    r.Range.End().String(),
		Status:     string(r.Status),
		PriceCents: r.PriceCents,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
