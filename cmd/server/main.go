// Command server runs the coffer policy service: budget enforcement, savings
// vaults, delegate management, and the account policy registry behind one
// HTTP API.
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

	authzhandler "coffer/internal/authz/handler"
	authzports "coffer/internal/authz/ports"
	authzservice "coffer/internal/authz/service"
	authzstore "coffer/internal/authz/store"
	budgethandler "coffer/internal/budget/handler"
	budgetmetrics "coffer/internal/budget/metrics"
	budgetports "coffer/internal/budget/ports"
	budgetservice "coffer/internal/budget/service"
	budgetstore "coffer/internal/budget/store"
	historyhandler "coffer/internal/history/handler"
	historyports "coffer/internal/history/ports"
	historyservice "coffer/internal/history/service"
	historystore "coffer/internal/history/store"
	"coffer/internal/ledger"
	"coffer/internal/platform/config"
	"coffer/internal/platform/httpserver"
	"coffer/internal/platform/logger"
	"coffer/internal/platform/metrics"
	"coffer/internal/platform/postgres"
	platformredis "coffer/internal/platform/redis"
	"coffer/internal/platform/token"
	"coffer/internal/registry"
	registryhandler "coffer/internal/registry/handler"
	"coffer/internal/replay"
	httptransport "coffer/internal/transport/http"
	vaulthandler "coffer/internal/vault/handler"
	vaultmetrics "coffer/internal/vault/metrics"
	vaultports "coffer/internal/vault/ports"
	vaultservice "coffer/internal/vault/service"
	vaultstore "coffer/internal/vault/store"
	id "coffer/pkg/domain"
	"coffer/pkg/platform/events"
	eventskafka "coffer/pkg/platform/events/kafka"
)

const tokenTTL = time.Hour

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	treasury, err := id.ParseAccountID(cfg.TreasuryAccount)
	if err != nil {
		log.Error("invalid treasury account", "error", err)
		os.Exit(1)
	}

	// Storage backend.
	var (
		delegateStore authzports.DelegateStore
		budgetStore   budgetports.BudgetStore
		vaultStore    vaultports.VaultStore
		historyStore  historyports.HistoryStore
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		delegateStore = authzstore.NewPostgresDelegateStore(db)
		budgetStore = budgetstore.NewPostgresBudgetStore(db)
		vaultStore = vaultstore.NewPostgresVaultStore(db)
		historyStore = historystore.NewPostgresHistoryStore(db)
	case "memory":
		delegateStore = authzstore.NewInMemoryDelegateStore()
		budgetStore = budgetstore.NewInMemoryBudgetStore()
		vaultStore = vaultstore.NewInMemoryVaultStore()
		historyStore = historystore.NewInMemoryHistoryStore()
	default:
		log.Error("unknown store backend", "backend", cfg.StoreBackend)
		os.Exit(1)
	}

	// Replay guard: Redis when configured, in-memory otherwise.
	var replayGuard replay.Guard
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		replayGuard = replay.NewRedisGuard(redisClient.Client, cfg.Redis.ReplayTTL)
		log.Info("replay guard backed by redis")
	} else {
		replayGuard = replay.NewInMemoryGuard(cfg.Redis.ReplayTTL)
	}

	// Event pipeline: services emit into the feed, the worker drains into the
	// history store and, when configured, Kafka.
	feed := events.NewFeed(1024, events.WithFeedLogger(log))
	sinks := []events.Sink{historyservice.NewSink(historyStore)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := eventskafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to start kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		sinks = append(sinks, kafkaPublisher)
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}
	worker := events.NewWorker(feed.Inbox(), log, sinks...)

	// Services.
	authz, err := authzservice.New(delegateStore,
		authzservice.WithLogger(log),
		authzservice.WithPublisher(feed),
		authzservice.WithMaxDelegates(cfg.MaxDelegates),
	)
	if err != nil {
		log.Error("failed to build authz service", "error", err)
		os.Exit(1)
	}

	budget, err := budgetservice.New(budgetStore, authz,
		budgetservice.WithLogger(log),
		budgetservice.WithPublisher(feed),
		budgetservice.WithMetrics(budgetmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build budget service", "error", err)
		os.Exit(1)
	}

	// The in-memory ledger stands in for the host ledger until a real
	// accessor is wired; vault escrow still goes through the Transfer path.
	vault, err := vaultservice.New(vaultStore, authz, ledger.NewInMemoryLedger(), treasury,
		vaultservice.WithLogger(log),
		vaultservice.WithPublisher(feed),
		vaultservice.WithMetrics(vaultmetrics.New()),
		vaultservice.WithMaxOpenVaults(cfg.MaxOpenVaults),
		vaultservice.WithHighValueThreshold(cfg.HighValueGoalThreshold),
	)
	if err != nil {
		log.Error("failed to build vault service", "error", err)
		os.Exit(1)
	}

	history, err := historyservice.New(historyStore, authz, historyservice.WithLogger(log))
	if err != nil {
		log.Error("failed to build history service", "error", err)
		os.Exit(1)
	}

	policies, err := registry.New(budget, vault, authz, registry.WithLogger(log))
	if err != nil {
		log.Error("failed to build registry", "error", err)
		os.Exit(1)
	}

	// HTTP API.
	platformMetrics := metrics.New()
	tokenManager := token.NewManager(cfg.JWTSigningKey, tokenTTL)

	budgetH := budgethandler.New(budget, log)
	vaultH := vaulthandler.New(vault, log)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:       log,
		Metrics:      platformMetrics,
		JWTValidator: tokenManager,
		ReplayGuard:  replayGuard,
		Handlers: []httptransport.Registrar{
			budgetH,
			vaultH,
			authzhandler.New(authz, log),
			historyhandler.New(history, log),
			registryhandler.New(policies, log),
		},
		AdminHandlers: []httptransport.AdminRegistrar{budgetH, vaultH},
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		log.Info("starting coffer", "addr", cfg.Addr, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		feed.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
