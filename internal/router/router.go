package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/handler"
)

// RegisterRoutes registers the health check.  db may be nil when no
// database backs the service.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers unauthenticated availability endpoints.  cache
// wraps only the court listing; availability is always computed fresh.
func RegisterPublic(e *echo.Echo, a *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	e.POST("/v1/availability", a.Query)
	e.GET("/v1/courts/:id/availability", a.CourtAvailability)
	e.GET("/v1/venues/:id/courts", a.ListCourts, orPassthrough(cache))
}

func orPassthrough(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}
