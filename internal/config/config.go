package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// InMemory is the SESSION_DB_PATH value that disables durable persistence.
const InMemory = "memory"

// Config holds the portal's runtime settings.
type Config struct {
	Port          string
	LogLevel      string
	CORSOrigins   []string
	SessionDBPath string // "memory" keeps the session in process memory only
	SessionSecret string

	AuthLatency  time.Duration
	AuthTimeout  time.Duration
	NoticeBuffer int

	EmergencyRoles   []string
	EmergencyMessage string

	MongoURI      string
	MongoDatabase string
}

const DefaultEmergencyMessage = "Emergency access granted. This access is being logged for audit purposes."

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:             valueOr(getenv("API_PORT"), "8080"),
		LogLevel:         valueOr(getenv("LOG_LEVEL"), "info"),
		CORSOrigins:      splitList(valueOr(getenv("CORS_ORIGINS"), "http://localhost:5173")),
		SessionSecret:    getenv("JWT_SECRET"),
		EmergencyRoles:   splitList(valueOr(getenv("EMERGENCY_ROLES"), "doctor,hospital")),
		EmergencyMessage: valueOr(getenv("EMERGENCY_MESSAGE"), DefaultEmergencyMessage),
		MongoURI:         getenv("MONGO_URI"),
		MongoDatabase:    valueOr(getenv("MONGO_DATABASE"), "mediflow"),
		SessionDBPath:    valueOr(getenv("SESSION_DB_PATH"), "data/session"),
	}

	var err error
	if cfg.AuthLatency, err = duration(getenv, "AUTH_LATENCY", time.Second); err != nil {
		return nil, err
	}
	if cfg.AuthTimeout, err = duration(getenv, "AUTH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AuthTimeout <= cfg.AuthLatency {
		return nil, fmt.Errorf("AUTH_TIMEOUT (%s) must exceed AUTH_LATENCY (%s)", cfg.AuthTimeout, cfg.AuthLatency)
	}

	cfg.NoticeBuffer = 50
	if v := getenv("NOTICE_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid NOTICE_BUFFER %q", v)
		}
		cfg.NoticeBuffer = n
	}

	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
