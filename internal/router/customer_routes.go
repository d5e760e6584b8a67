package router

import (
	"github.com/labstack/echo/v4"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/handler"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/middleware"
)

// RegisterCustomer registers the booking endpoints under /v1.  All routes
// require a valid JWT with a known role.  limiter is applied after
// authentication so buckets can be keyed by user.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	limiter = orPassthrough(limiter)
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleUser, middleware.RoleFacilityOwner, middleware.RoleAdmin),
	)
	g.POST("/bookings", h.Create, limiter)
	g.GET("/my-bookings", h.List)
	g.GET("/bookings/:id", h.Get)
	g.DELETE("/bookings/:id", h.Cancel, limiter)
}
