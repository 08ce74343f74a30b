package config

import (
    "context"
    "crypto/tls"
    "fmt"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions reads the Redis connection from the environment. REDIS_URL
// (redis:// or rediss://) wins; otherwise REDIS_HOST and REDIS_PORT, or
// REDIS_ADDR, with REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
func RedisOptions() (*redis.Options, error) {
    if url := os.Getenv("REDIS_URL"); url != "" {
        opts, err := redis.ParseURL(url)
        if err != nil {
            return nil, fmt.Errorf("REDIS_URL: %w", err)
        }
        return opts, nil
    }

    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, nil
}

// NewRedisClient connects and pings Redis. The activity feed, rate limit
// and stats cache are switched off by the caller when it fails.
func NewRedisClient() (*redis.Client, error) {
    opts, err := RedisOptions()
    if err != nil {
        return nil, err
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
    }
    return client, nil
}
