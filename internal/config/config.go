package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings"
    "time"
)

// Store drivers accepted by STORE_DRIVER.
const (
    StoreMySQL  = "mysql"
    StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env       string // application environment (e.g. "dev", "prod")
    Port      string // HTTP port to listen on
    LogLevel  string // zap level name, empty for the environment default
    Store     string // StoreMySQL or StoreMemory
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify access tokens

    Booking BookingConfig
    Events  EventsConfig
}

// BookingConfig tunes availability and admission.
type BookingConfig struct {
    SlotDuration   time.Duration // length of generated slots
    AdmitTimeout   time.Duration // deadline for each store call made while admitting
    IdempotencyTTL time.Duration // how long an Idempotency-Key is remembered
}

// EventsConfig controls the reservation event publisher and consumer.
type EventsConfig struct {
    RabbitURL     string // AMQP URL, publishing is disabled when empty
    ConsumerOn    bool   // run the in-process booking log consumer
    BookingLogDir string // directory of booking.log written by the consumer
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database variables
// are only required with the mysql store.
func Load() Config {
    cfg := Config{
        Env:       must("APP_ENV"),
        Port:      must("APP_PORT"),
        LogLevel:  os.Getenv("LOG_LEVEL"),
        Store:     strings.ToLower(envStr("STORE_DRIVER", StoreMySQL)),
        JWTSecret: must("JWT_SECRET"),
        Booking:   LoadBookingConfig(),
        Events: EventsConfig{
            RabbitURL:     os.Getenv("RABBITMQ_URL"),
            ConsumerOn:    envBool("EVENTS_ENABLED", false),
            BookingLogDir: envStr("BOOKING_LOG_DIR", "logs"),
        },
    }
    switch cfg.Store {
    case StoreMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = must("DB_PORT")
        cfg.DBName = must("DB_NAME")
    case StoreMemory:
    default:
        log.Fatalf("invalid STORE_DRIVER: %q", cfg.Store)
    }
    return cfg
}

// LoadBookingConfig reads SLOT_MINUTES, ADMIT_TIMEOUT and IDEMPOTENCY_TTL.
// SLOT_MINUTES must be a positive integer when set.
func LoadBookingConfig() BookingConfig {
    slot := 60
    if _, ok := os.LookupEnv("SLOT_MINUTES"); ok {
        slot = mustInt("SLOT_MINUTES")
        if slot <= 0 {
            log.Fatalf("invalid SLOT_MINUTES: %d", slot)
        }
    }
    return BookingConfig{
        SlotDuration:   time.Duration(slot) * time.Minute,
        AdmitTimeout:   envDur("ADMIT_TIMEOUT", 5*time.Second),
        IdempotencyTTL: envDur("IDEMPOTENCY_TTL", 24*time.Hour),
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
