package middleware

// identity.go holds helpers shared by the middleware and the handlers for
// reading the authenticated caller from the Echo context.

import (
    "math"
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's ID stored by JWTAuth.  ok is
// false for anonymous requests.
func UserID(c echo.Context) (id uint64, ok bool) {
    id, ok = c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// rateIdentity names the caller in rate limit keys: the user ID when
// authenticated, "anon" otherwise.
func rateIdentity(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}

func parseSubject(v any) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t <= 0 || t >= 1<<63 || t != math.Trunc(t) {
            return 0, false
        }
        return uint64(t), true
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        return n, err == nil && n != 0
    }
    return 0, false
}
