package config

import (
	"os"
	"time"
)

// Server captures process-level configuration resolved once at startup.
// The pipeline never reads the environment directly; everything it needs
// arrives through this read-only struct.
type Server struct {
	Addr string

	// Billing service (Billomat-style REST API).
	BillingAccountID string
	BillingAPIKey    string

	// Government VAT registry (VIES-style SOAP endpoint).
	RegistryURL string

	// Notification channel (Slack-style chat API).
	SlackToken   string
	SlackChannel string
	SlackMention string

	// NotifyOnSuccess also delivers reports with no discrepancies,
	// useful as an audit trail.
	NotifyOnSuccess bool

	// ExternalCallTimeout bounds each outbound call (billing, registry,
	// notification). Kept deliberately short; a hung upstream must not
	// hold the webhook open.
	ExternalCallTimeout time.Duration

	// RegistryCacheTTL bounds how long a registry answer may be reused.
	RegistryCacheTTL time.Duration

	// AdminJWTKey signs bearer tokens for the operator check endpoint.
	AdminJWTKey string

	// PostgresURL enables the Postgres-backed registry cache when set.
	PostgresURL string

	// KafkaBrokers enables the Kafka audit sink when set (comma-separated).
	KafkaBrokers string
	KafkaTopic   string

	Redis RedisConfig
}

// RedisConfig holds connection settings for the optional Redis-backed
// registry cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VATWATCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	registryURL := os.Getenv("VIES_URL")
	if registryURL == "" {
		registryURL = "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "vatwatch.audit"
	}

	return Server{
		Addr:                addr,
		BillingAccountID:    os.Getenv("BILLING_ACCOUNT_ID"),
		BillingAPIKey:       os.Getenv("BILLING_API_KEY"),
		RegistryURL:         registryURL,
		SlackToken:          os.Getenv("SLACK_TOKEN"),
		SlackChannel:        os.Getenv("SLACK_CHANNEL"),
		SlackMention:        os.Getenv("SLACK_MENTION"),
		NotifyOnSuccess:     os.Getenv("SEND_MESSAGE_ON_SUCCESS") == "true",
		ExternalCallTimeout: durationFromEnv("EXTERNAL_CALL_TIMEOUT", 5*time.Second),
		RegistryCacheTTL:    durationFromEnv("REGISTRY_CACHE_TTL", 5*time.Minute),
		AdminJWTKey:         os.Getenv("ADMIN_JWT_KEY"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		KafkaBrokers:        os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:          topic,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
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
