package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr               string
	PublicOrigin       string
	JWTSigningKey      string
	CertificateHMACKey string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers       []string
	KafkaDecisionTopic string
}

// CertificateCacheTTL bounds how long rendered certificate views may be
// served from cache.
var CertificateCacheTTL = 15 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BIRTHREG_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	origin := os.Getenv("BIRTHREG_PUBLIC_ORIGIN")
	if origin == "" {
		origin = "http://localhost:8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	hmacKey := os.Getenv("CERTIFICATE_HMAC_KEY")
	if hmacKey == "" {
		hmacKey = jwtSigningKey
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_DECISION_TOPIC")
	if topic == "" {
		topic = "birthregistry.decisions"
	}

	return Server{
		Addr:               addr,
		PublicOrigin:       origin,
		JWTSigningKey:      jwtSigningKey,
		CertificateHMACKey: hmacKey,
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       brokers,
		KafkaDecisionTopic: topic,
	}
}
