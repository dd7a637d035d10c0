package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"warmpath/internal/categorize"
	categorizemetrics "warmpath/internal/categorize/metrics"
	contactmetrics "warmpath/internal/contact/metrics"
	contactservice "warmpath/internal/contact/service"
	contactstore "warmpath/internal/contact/store"
	"warmpath/internal/platform/config"
	"warmpath/internal/platform/httpserver"
	"warmpath/internal/platform/logger"
	platformredis "warmpath/internal/platform/redis"
	prospectmetrics "warmpath/internal/prospect/metrics"
	prospectservice "warmpath/internal/prospect/service"
	prospectstore "warmpath/internal/prospect/store"
	"warmpath/internal/scoring"
	httptransport "warmpath/internal/transport/http"
	"warmpath/pkg/platform/batch"
	"warmpath/pkg/platform/events"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		contacts  contactservice.ContactStore
		prospects prospectservice.ProspectStore
	)
	health := map[string]httptransport.HealthCheck{}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("connect postgres", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		contactPG := contactstore.NewPostgres(pool)
		prospectPG := prospectstore.NewPostgres(pool)
		if err := contactPG.EnsureSchema(ctx); err != nil {
			log.Error("contacts schema", "err", err)
			os.Exit(1)
		}
		if err := prospectPG.EnsureSchema(ctx); err != nil {
			log.Error("prospects schema", "err", err)
			os.Exit(1)
		}
		contacts = contactPG
		prospects = prospectPG
		health["postgres"] = pool.Ping
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		contacts = contactstore.NewInMemory()
		prospects = prospectstore.NewInMemory()
	}

	var publisher events.Publisher = events.NewMemory(1000)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "err", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	firms, err := categorize.LoadKnownFirms(cfg.KnownFirmsPath)
	if err != nil {
		log.Error("load known firms", "err", err)
		os.Exit(1)
	}

	cache, err := categorize.NewCache(cfg.ClassifierCacheTTL)
	if err != nil {
		log.Error("create categorization cache", "err", err)
		os.Exit(1)
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "err", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = cache.WithRedis(redisClient.Client)
		health["redis"] = redisClient.Health
	}

	runner := batch.New(batch.WithConcurrency(cfg.BatchConcurrency))

	contactSvc := contactservice.New(contacts,
		contactservice.WithPublisher(publisher),
		contactservice.WithMetrics(contactmetrics.New()),
		contactservice.WithLogger(log),
	)
	scoringSvc := scoring.New(contacts,
		scoring.WithRunner(runner),
		scoring.WithLogger(log),
	)
	categorizeSvc := categorize.New(contacts, firms,
		categorize.WithCache(cache),
		categorize.WithRunner(runner),
		categorize.WithMetrics(categorizemetrics.New()),
		categorize.WithLogger(log),
	)
	prospectSvc := prospectservice.New(prospects, contacts,
		prospectservice.WithPublisher(publisher),
		prospectservice.WithMetrics(prospectmetrics.New()),
		prospectservice.WithRunner(runner),
		prospectservice.WithLogger(log),
		prospectservice.WithWarmIntroThresholds(cfg.WarmStrengthThreshold, cfg.WarmScoreThreshold),
	)

	router := httptransport.NewRouter(
		httptransport.NewContactHandler(contactSvc, scoringSvc, categorizeSvc, cfg.TeamCompanies),
		httptransport.NewProspectHandler(prospectSvc),
		httptransport.NewHealthHandler(health),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting warmpath", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
}
