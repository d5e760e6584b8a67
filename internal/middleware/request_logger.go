package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// RequestLogger assigns every request an X-Request-ID (kept when the client
// sends one) and logs method, route, status and latency when it completes.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            rid := c.Request().Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, rid)

            err := next(c)
            if err != nil {
                c.Error(err)
            }

            fields := []zap.Field{
                zap.String("request_id", rid),
                zap.String("method", c.Request().Method),
                zap.String("route", c.Path()),
                zap.Int("status", c.Response().Status),
                zap.Duration("latency", time.Since(start)),
                zap.String("ip", c.RealIP()),
            }
            if uid, ok := UserID(c); ok {
                fields = append(fields, zap.Uint64("user_id", uid))
            }
            switch status := c.Response().Status; {
            case status >= 500:
                log.Error("request", append(fields, zap.Error(err))...)
            case status >= 400:
                log.Info("request", fields...)
            default:
                log.Debug("request", fields...)
            }
            return nil
        }
    }
}
