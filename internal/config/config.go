package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values such as the connect timeout
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Every value has a default so the service can
// start with an empty environment and report database problems via /health.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	Port    string // HTTP port to listen on
	AppName string // name reported by the root endpoint
	Version string // version reported by the root endpoint

	DB        DBConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
}

// DBConfig describes how a single request connection is established.
type DBConfig struct {
	Driver         string        // postgres, mysql or sqlite
	Host           string        // database host address
	Port           string        // database port number
	Name           string        // database name (file path for sqlite)
	User           string        // database username
	Pass           string        // database password (optional)
	SSLMode        string        // disable, allow, prefer, require, verify-ca, verify-full
	ConnectTimeout time.Duration // upper bound for establishing one connection
}

// EventsConfig controls publication of todo lifecycle events.  Events are
// disabled when URL is empty.
type EventsConfig struct {
	URL         string
	Queue       string
	DialTimeout time.Duration // bound on reaching the broker per publish
}

// TelemetryConfig toggles the OTLP exporters.  Endpoints come from the
// standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

// Load reads configuration values from environment variables and returns a
// Config.  PG* variables are honoured as fallbacks for the DB_* ones.
func Load() Config {
	return Config{
		Env:     getenv("APP_ENV", "dev"),
		Port:    first("8000", "APP_PORT", "PORT"),
		AppName: getenv("APP_NAME", "Todo API"),
		Version: getenv("APP_VERSION", "1.0.0"),
		DB: DBConfig{
			Driver:         getenv("DB_DRIVER", "postgres"),
			Host:           first("localhost", "DB_HOST", "PGHOST"),
			Port:           first("5432", "DB_PORT", "PGPORT"),
			Name:           first("postgres", "DB_NAME", "PGDATABASE"),
			User:           first("postgres", "DB_USER", "PGUSER"),
			Pass:           first("", "DB_PASS", "PGPASSWORD"),
			SSLMode:        first("require", "DB_SSLMODE", "PGSSLMODE"),
			ConnectTimeout: envDur("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		RateLimit: LoadRateLimitConfig(),
		Events: EventsConfig{
			URL:         first("", "RABBITMQ_URL", "AMQP_URL"),
			Queue:       getenv("TODO_EVENTS_QUEUE", "todo.events"),
			DialTimeout: envDur("TODO_EVENTS_DIAL_TIMEOUT", 2*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: getenv("OTEL_SERVICE_NAME", "todo-api"),
		},
	}
}

// first returns the value of the first non-empty variable in keys, or def.
func first(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
