package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// signed with HS256 and stores the caller's numeric user ID and role in the
// request context under "user_id" and "role".  Issuing tokens belongs to
// the identity service; this middleware only verifies them.  Handlers read
// the caller with UserID.
func JWTAuth(secret string) echo.MiddlewareFunc {
    key := []byte(secret)
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := parser.Parse(raw, func(*jwt.Token) (interface{}, error) { return key, nil })
            if err != nil || !tok.Valid {
                return unauthorized(c, "invalid token")
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return unauthorized(c, "invalid claims")
            }

            // sub is the numeric user ID; encoders emit it either as a JSON
            // number or as a string.
            uid, ok := parseSubject(claims["sub"])
            if !ok {
                return unauthorized(c, "token subject is not a user id")
            }
            c.Set(ctxUserID, uid)
            if role, ok := claims["role"].(string); ok {
                c.Set(ctxRole, role)
            }
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
