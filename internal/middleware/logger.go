package middleware

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// RequestLogger writes one structured entry per request.  Server errors
// are logged at error level, client errors at warn.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }

            req := c.Request()
            status := c.Response().Status
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("route", c.Path()),
                zap.String("uri", req.RequestURI),
                zap.Int("status", status),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
                zap.Int64("bytes_out", c.Response().Size),
            }
            if id, ok := CurrentIdentity(c); ok {
                fields = append(fields, zap.Uint64("user_id", id.UserID), zap.String("role", string(id.Role)))
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            }

            level := zapcore.InfoLevel
            switch {
            case status >= 500:
                level = zapcore.ErrorLevel
            case status >= 400:
                level = zapcore.WarnLevel
            }
            if ce := log.Check(level, "http request"); ce != nil {
                ce.Write(fields...)
            }
            return nil
        }
    }
}

// Recover turns a handler panic into a 500 and logs it with the stack.
// Register it after RequestLogger so the 500 is logged as a request too.
func Recover(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) (err error) {
            defer func() {
                if r := recover(); r != nil {
                    if r == http.ErrAbortHandler {
                        panic(r)
                    }
                    log.Error("handler panic",
                        zap.String("route", c.Path()),
                        zap.Any("panic", r),
                        zap.Stack("stack"))
                    err = echo.NewHTTPError(http.StatusInternalServerError, "internal error").
                        SetInternal(fmt.Errorf("panic: %v", r))
                }
            }()
            return next(c)
        }
    }
}
