package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health is the liveness check used by load balancers.  It returns a
// plain text "ok" with HTTP 200 while the process is serving.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether the database answers.  Redis is optional: a
// missing or unreachable Redis only disables caching, rate limiting and
// the activity feed, so it is reported but never fails the check.
func Ready(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        redisState := "disabled"
        if rdb != nil {
            redisState = "ok"
            if err := rdb.Ping(ctx).Err(); err != nil {
                redisState = "unreachable"
            }
        }
        if err := db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"database": "unreachable", "redis": redisState})
        }
        return c.JSON(http.StatusOK, echo.Map{"database": "ok", "redis": redisState})
    }
}
