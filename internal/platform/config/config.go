package config

import (
	"os"
	"strings"
	"time"
)

// Session carries cookie and token policy. Expiry defaults reflect the
// product choice of "remember me by default": login sessions are long-lived
// unless a deployment overrides them, while reset tokens die within a day.
type Session struct {
	Secret       string
	CookieName   string
	CookieDomain string
	Expires      time.Duration
	ResetTTL     time.Duration
}

// Server captures process-level configuration.
type Server struct {
	Addr         string
	DevMode      bool
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string
	Session      Session
}

const (
	// Ten-year login sessions by default; configurable per deployment.
	defaultSessionExpiry = 10 * 365 * 24 * time.Hour
	defaultResetTTL      = 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GATEHOUSE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		// Use a default for development - must be overridden in production
		secret = "dev-secret-key-change-in-production"
	}

	cookieName := os.Getenv("SESSION_COOKIE_NAME")
	if cookieName == "" {
		cookieName = "session"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "gatehouse.auth-events"
	}

	return Server{
		Addr:         addr,
		DevMode:      os.Getenv("GATEHOUSE_DEV_MODE") == "true",
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: brokers,
		AuditTopic:   auditTopic,
		Session: Session{
			Secret:       secret,
			CookieName:   cookieName,
			CookieDomain: os.Getenv("SESSION_COOKIE_DOMAIN"),
			Expires:      durationEnv("SESSION_EXPIRES", defaultSessionExpiry),
			ResetTTL:     durationEnv("RESET_TOKEN_TTL", defaultResetTTL),
		},
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
