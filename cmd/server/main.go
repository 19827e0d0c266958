package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"birthregistry/internal/certificate"
	"birthregistry/internal/decisionlog"
	"birthregistry/internal/hospital"
	"birthregistry/internal/jwttoken"
	"birthregistry/internal/platform/config"
	"birthregistry/internal/platform/httpserver"
	"birthregistry/internal/platform/logger"
	"birthregistry/internal/platform/postgres"
	platformredis "birthregistry/internal/platform/redis"
	"birthregistry/internal/registration"
	regmetrics "birthregistry/internal/registration/metrics"
	regservice "birthregistry/internal/registration/service"
	httptransport "birthregistry/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Postgres, Redis,
// and Kafka are all optional: missing configuration falls back to in-memory
// stores and no-op sinks, so the service runs standalone in development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := decisionlog.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaDecisionTopic, log)
	if err != nil {
		log.Error("kafka connect failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	var (
		hospitalStore hospital.Store
		regStore      registration.Store
		actionStore   decisionlog.Store
	)
	if pool != nil {
		hospitalStore = hospital.NewPostgresStore(pool)
		regStore = registration.NewPostgresStore(pool)
		actionStore = decisionlog.NewPostgresStore(pool)
		log.Info("using postgres stores")
	} else {
		hospitalStore = hospital.NewInMemoryStore()
		regStore = registration.NewInMemoryStore()
		actionStore = decisionlog.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	metrics := regmetrics.New()

	hospitals := hospital.NewService(hospitalStore)
	workflowOpts := []regservice.Option{
		regservice.WithLogger(log),
		regservice.WithMetrics(metrics),
	}
	if publisher != nil {
		workflowOpts = append(workflowOpts, regservice.WithPublisher(publisher))
	}
	workflow := regservice.New(regStore, hospitalStore, actionStore, workflowOpts...)

	renderer := certificate.NewRenderer(cfg.CertificateHMACKey, cfg.PublicOrigin)
	certCache := certificate.NewCache(redisClient, config.CertificateCacheTTL)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "birthregistry")

	handler := httptransport.NewHandler(hospitals, workflow, renderer, certCache, metrics, log)
	router := httptransport.NewRouter(handler, tokens)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting birthregistry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
