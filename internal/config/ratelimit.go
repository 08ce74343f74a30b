package config

import "time"

// Rate limit key parts. A request's bucket is named by the parts listed in
// RateLimitConfig.KeyParts, in that order.
const (
    KeyByIP     = "ip"
    KeyByUser   = "user"
    KeyByHostel = "hostel"
    KeyByRoute  = "route"
)

// RateLimitConfig drives the Redis token bucket in front of the API. Each
// bucket holds Burst tokens and regains one token every RefillEvery.
type RateLimitConfig struct {
    Enabled     bool
    Burst       int
    RefillEvery time.Duration
    Idle        time.Duration // buckets untouched this long are dropped
    KeyParts    []string
    Prefix      string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Burst:       envInt("RATE_LIMIT_BURST", 60),
        RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", time.Second),
        Idle:        envDur("RATE_LIMIT_IDLE", 10*time.Minute),
        KeyParts:    envList("RATE_LIMIT_KEY", "ip,user,route"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    return cfg.normalized()
}

func (c RateLimitConfig) normalized() RateLimitConfig {
    if c.Burst < 1 {
        c.Burst = 1
    }
    if c.RefillEvery <= 0 {
        c.RefillEvery = time.Second
    }
    // a bucket must outlive the time it takes to refill completely
    if full := time.Duration(c.Burst) * c.RefillEvery; c.Idle < full {
        c.Idle = full
    }
    if len(c.KeyParts) == 0 {
        c.KeyParts = []string{KeyByIP}
    }
    return c
}
