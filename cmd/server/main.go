package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"vatwatch/internal/audit"
	"vatwatch/internal/billing"
	"vatwatch/internal/notify"
	"vatwatch/internal/platform/config"
	"vatwatch/internal/platform/httpserver"
	"vatwatch/internal/platform/logger"
	"vatwatch/internal/platform/metrics"
	"vatwatch/internal/platform/middleware"
	platformredis "vatwatch/internal/platform/redis"
	"vatwatch/internal/reconcile"
	"vatwatch/internal/reconcile/ports"
	httptransport "vatwatch/internal/transport/http"
	"vatwatch/internal/vies"
	"vatwatch/internal/vies/cache"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	billingClient, err := billing.NewClient(billing.Config{
		AccountID: cfg.BillingAccountID,
		APIKey:    cfg.BillingAPIKey,
		Timeout:   cfg.ExternalCallTimeout,
	})
	if err != nil {
		log.Error("failed to build billing client", "error", err)
		os.Exit(1)
	}

	registryClient, closeCache := buildRegistryClient(cfg, log, m)
	defer closeCache()

	slackClient, err := notify.NewSlackClient(notify.Config{
		Token:   cfg.SlackToken,
		Channel: cfg.SlackChannel,
		Mention: cfg.SlackMention,
		Timeout: cfg.ExternalCallTimeout,
	})
	if err != nil {
		log.Error("failed to build notification client", "error", err)
		os.Exit(1)
	}

	auditPublisher, closeAudit := buildAuditPublisher(cfg, log)
	defer closeAudit()

	service, err := reconcile.New(billingClient, registryClient, slackClient,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(m),
		reconcile.WithAuditPublisher(auditPublisher),
		reconcile.WithNotifyOnSuccess(cfg.NotifyOnSuccess),
	)
	if err != nil {
		log.Error("failed to build reconciliation service", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(service, registryClient, log, m, auditPublisher)
	router := httptransport.NewRouter(handler, middleware.NewHMACValidator(cfg.AdminJWTKey), log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vatwatch", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildRegistryClient assembles the registry client with the best available
// cache backend: Redis when configured, then Postgres, then in-process.
func buildRegistryClient(cfg config.Server, log *slog.Logger, m *metrics.Metrics) (ports.RegistryClient, func()) {
	client := vies.NewClient(vies.Config{
		URL:     cfg.RegistryURL,
		Timeout: cfg.ExternalCallTimeout,
	})

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		log.Info("registry cache backend", "backend", "redis")
		store := cache.NewRedisStore(redisClient.Client, cfg.RegistryCacheTTL, m)
		return cache.NewCachingClient(client, store, log), func() { _ = redisClient.Close() }
	}

	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		log.Info("registry cache backend", "backend", "postgres")
		store := cache.NewPostgresStore(db, cfg.RegistryCacheTTL, m)
		return cache.NewCachingClient(client, store, log), func() { _ = db.Close() }
	}

	log.Info("registry cache backend", "backend", "memory")
	store := cache.NewMemoryStore(cfg.RegistryCacheTTL)
	return cache.NewCachingClient(client, store, log), func() {}
}

// buildAuditPublisher picks the Kafka sink when brokers are configured and
// falls back to the in-memory store otherwise.
func buildAuditPublisher(cfg config.Server, log *slog.Logger) (*audit.Publisher, func()) {
	if cfg.KafkaBrokers != "" {
		store, err := audit.NewKafkaStore(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		log.Info("audit sink", "backend", "kafka", "topic", cfg.KafkaTopic)
		publisher := audit.NewPublisher(store, audit.WithAsyncBuffer(256))
		return publisher, func() {
			publisher.Close()
			store.Close()
		}
	}

	log.Info("audit sink", "backend", "memory")
	publisher := audit.NewPublisher(audit.NewMemoryStore())
	return publisher, publisher.Close
}
