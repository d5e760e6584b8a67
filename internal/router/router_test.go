package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/booking"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/handler"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/repository"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/utils"
)

type downDB struct{}

func (downDB) PingContext(context.Context) error { return errors.New("down") }

func newApp(t *testing.T) *echo.Echo {
	t.Helper()
	window, err := schedule.ParseTimeRange("06:00", "22:00")
	require.NoError(t, err)
	m := repository.NewMemoryStore()
	m.PutVenue(model.Venue{ID: 1, Name: "Riverside", IsActive: true})
	m.PutCourt(model.Court{ID: 10, VenueID: 1, Name: "Court 1", PricePerHourCents: 1000, Window: window})
	svc := booking.NewService(m, m, m, nil, booking.Config{}, nil)

	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterPublic(e, handler.NewAvailabilityHandler(svc, nil), nil)
	RegisterCustomer(e, handler.NewBookingHandler(svc, nil, nil), "router-secret", nil)
	return e
}

func TestRoutes(t *testing.T) {
	e := newApp(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courts/10/availability?date=2025-03-14", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/my-bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingRequiresKnownRole(t *testing.T) {
	e := newApp(t)
	body := `{"court_id":10,"date":"2025-03-14","start_time":"10:00","end_time":"11:00"}`

	post := func(role string) int {
		tok, err := utils.NewAccessToken("router-secret", 5, role, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusForbidden, post("guest"))
	assert.Equal(t, http.StatusCreated, post("user"))
}

func TestHealth_DatabaseDown(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, downDB{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
