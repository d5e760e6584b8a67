package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// Roles carried in access tokens.
const (
    RoleUser          = "user"
    RoleFacilityOwner = "facility_owner"
    RoleAdmin         = "admin"
)

// RequireRole returns a middleware that aborts with 403 unless the role
// stored by JWTAuth is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(ctxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "role not allowed"})
            }
            return next(c)
        }
    }
}
