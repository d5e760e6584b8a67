package middleware

import (
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// Recover turns a panicking handler into a 500 response and logs the panic
// with its stack.  http.ErrAbortHandler is re-panicked so net/http can abort
// the connection.
func Recover(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) (err error) {
            defer func() {
                r := recover()
                if r == nil {
                    return
                }
                if r == http.ErrAbortHandler {
                    panic(r)
                }
                log.Error("panic recovered",
                    zap.String("panic", fmt.Sprint(r)),
                    zap.String("route", c.Path()),
                    zap.Stack("stack"))
                err = echo.NewHTTPError(http.StatusInternalServerError, "internal")
            }()
            return next(c)
        }
    }
}
