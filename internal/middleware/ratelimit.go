package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/hostellog/hostel-admin/internal/config"
)

// takeScript refills a bucket by whole intervals and takes one token.
// Returns {allowed, remaining, wait_ms}.
var takeScript = redis.NewScript(`
local burst, every, now, idle = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens, at = tonumber(b[1]), tonumber(b[2])
if tokens == nil or at == nil then
    tokens, at = burst, now
end
local gained = math.floor(math.max(0, now - at) / every)
if gained > 0 then
    tokens = math.min(burst, tokens + gained)
    at = at + gained * every
end
local ok, wait = 0, 0
if tokens > 0 then
    ok, tokens = 1, tokens - 1
else
    wait = every - (now - at)
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('PEXPIRE', KEYS[1], idle)
return {ok, tokens, wait}
`)

type verdict struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

type bucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b bucket) take(ctx context.Context, key string) (verdict, error) {
    res, err := takeScript.Run(ctx, b.rdb, []string{key},
        b.cfg.Burst,
        b.cfg.RefillEvery.Milliseconds(),
        time.Now().UnixMilli(),
        b.cfg.Idle.Milliseconds(),
    ).Int64Slice()
    if err != nil {
        return verdict{}, err
    }
    if len(res) != 3 {
        return verdict{}, fmt.Errorf("rate limit script returned %d values", len(res))
    }
    return verdict{
        allowed:   res[0] == 1,
        remaining: res[1],
        wait:      time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// key names the caller's bucket from the configured parts. The hostel part
// groups every account of one hostel into a single bucket.
func (b bucket) key(c echo.Context) string {
    parts := []string{b.cfg.Prefix}
    for _, p := range b.cfg.KeyParts {
        switch p {
        case config.KeyByIP:
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case config.KeyByUser:
            parts = append(parts, "user", userKey(c))
        case config.KeyByHostel:
            parts = append(parts, "hostel", scopeKey(c))
        case config.KeyByRoute:
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}

// NewTokenBucket limits requests per bucket key. Without Redis, or when a
// check fails, requests pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    b := bucket{cfg: cfg, rdb: rdb}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := b.key(c)
            v, err := b.take(c.Request().Context(), key)
            if err != nil {
                log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
            if v.allowed {
                return next(c)
            }

            secs := int((v.wait + time.Second - 1) / time.Second)
            if secs < 1 {
                secs = 1
            }
            h.Set("Retry-After", strconv.Itoa(secs))
            log.Debug("rate limited", zap.String("key", key), zap.Duration("wait", v.wait))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too many requests, retry in " + strconv.Itoa(secs) + "s",
                "retry_after": secs,
            })
        }
    }
}
