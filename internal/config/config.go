package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
    Log            LogConfig
    Broker         BrokerConfig
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
    Level  string // debug, info, warn, error
    Format string // json or console
}

// BrokerConfig holds the RabbitMQ connection used for occupancy events.
// An empty URL disables publishing and the activity consumer.
type BrokerConfig struct {
    URL   string
    Queue string
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present; real environment variables win over it.  Required variables
// are enforced by must() and missing values cause the program to exit
// with a fatal log message.
func Load() Config {
    _ = godotenv.Load()
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        Log:            LoadLogConfig(),
        Broker:         LoadBrokerConfig(),
    }
}

// LoadLogConfig reads LOG_LEVEL and LOG_FORMAT.  Development environments
// default to the console encoder.
func LoadLogConfig() LogConfig {
    format := "json"
    if os.Getenv("APP_ENV") == "dev" {
        format = "console"
    }
    return LogConfig{
        Level:  envStr("LOG_LEVEL", "info"),
        Format: envStr("LOG_FORMAT", format),
    }
}

// LoadBrokerConfig reads RABBITMQ_URL (or AMQP_URL) and the event queue name.
func LoadBrokerConfig() BrokerConfig {
    url := os.Getenv("RABBITMQ_URL")
    if url == "" {
        url = os.Getenv("AMQP_URL")
    }
    return BrokerConfig{
        URL:   url,
        Queue: envStr("OCCUPANCY_QUEUE", "occupancy.events"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
