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

	"casegate/internal/casefile"
	httpapi "casegate/internal/http"
	"casegate/internal/notify"
	"casegate/internal/override"
	"casegate/internal/platform/config"
	"casegate/internal/platform/httpserver"
	"casegate/internal/platform/logger"
	"casegate/internal/platform/postgres"
	"casegate/internal/platform/redis"
	"casegate/internal/request"
	requesthandler "casegate/internal/request/handler"
	requestmetrics "casegate/internal/request/metrics"
	"casegate/internal/rules"
	ruleshandler "casegate/internal/rules/handler"
	rulesmetrics "casegate/internal/rules/metrics"
)

// main wires configuration, stores, services, and the HTTP server. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		overrideStore override.Store
		requestStore  request.Store
		caseStore     casefile.Store
	)

	switch cfg.Backend {
	case config.BackendMemory:
		overrideStore = override.NewInMemoryStore()
		requestStore = request.NewInMemoryStore()
		caseStore = casefile.NewInMemoryStore()
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		overrideStore = override.NewPostgresStore(db)
		requestStore = request.NewPostgresStore(db)
		// Case documents are portal-owned flat files regardless of the
		// request store backend.
		caseStore = casefile.NewFileStore(cfg.DataDir)
	default:
		overrideStore = override.NewFileStore(cfg.DataDir, log)
		requestStore = request.NewFileStore(cfg.DataDir, log)
		caseStore = casefile.NewFileStore(cfg.DataDir)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		overrideStore = override.NewRedisStore(redisClient.Client, log)
		log.Info("override store using redis")
	}

	notifyConfig := notify.NewConfig(notify.Settings{
		Enabled: cfg.Notify.Enabled,
		Topic:   cfg.Notify.Topic,
	})
	var notifier request.Notifier = notify.Noop{}
	if cfg.Notify.Enabled && len(cfg.Notify.Brokers) > 0 {
		dispatcher, err := notify.NewKafkaDispatcher(ctx, cfg.Notify.Brokers, notifyConfig, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer dispatcher.Close()
		notifier = dispatcher
	}

	overrideService := override.NewService(overrideStore, log)
	rulesService := rules.NewService(
		casefile.NewSnapshotProvider(caseStore),
		overrideService,
		rulesmetrics.New(),
	)
	requestService := request.NewService(
		requestStore,
		caseStore,
		notifier,
		log,
		requestmetrics.New(),
	)

	router := httpapi.NewRouter(
		ruleshandler.New(rulesService, overrideService, log),
		requesthandler.New(requestService, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting casegate",
		"addr", cfg.Addr,
		"backend", string(cfg.Backend),
		"notify_enabled", cfg.Notify.Enabled,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
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
