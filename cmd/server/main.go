package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"devicegate/internal/accounts"
	"devicegate/internal/audit"
	"devicegate/internal/gate"
	gatemetrics "devicegate/internal/gate/metrics"
	"devicegate/internal/ledger"
	"devicegate/internal/platform/config"
	"devicegate/internal/platform/httpserver"
	"devicegate/internal/platform/logger"
	"devicegate/internal/platform/redis"
	"devicegate/internal/platform/token"
	"devicegate/internal/policy"
	"devicegate/internal/resolver"
	httptransport "devicegate/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages; everything here is assembly.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise (demo mode).
	var (
		ledgerStore  ledger.Store
		accountStore accounts.Store
	)
	healthChecks := map[string]httptransport.HealthChecker{}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		pgLedger := ledger.NewPostgres(db)
		if err := pgLedger.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
		pgAccounts := accounts.NewPostgres(db)
		if err := pgAccounts.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure accounts schema: %w", err)
		}
		ledgerStore, accountStore = pgLedger, pgAccounts
		healthChecks["postgres"] = httptransport.HealthCheckerFunc(db.PingContext)
		log.Info("using postgres stores")
	} else {
		ledgerStore = ledger.NewMemoryStore()
		accountStore = accounts.NewMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	// Replay guard: Redis when configured, in-memory otherwise.
	var guard resolver.ReplayGuard
	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		guard = resolver.NewRedisReplayGuard(redisClient.Client, cfg.ReplayTTL)
		healthChecks["redis"] = httptransport.HealthCheckerFunc(redisClient.Health)
		log.Info("using redis replay guard")
	} else {
		guard = resolver.NewMemoryReplayGuard(cfg.ReplayTTL)
		log.Warn("REDIS_URL not set, using in-memory replay guard")
	}

	if cfg.VendorAPIKey == "" {
		log.Warn("FINGERPRINT_API_KEY not set, identity resolution will fail")
	}
	identityResolver := resolver.NewClient(cfg.VendorAPIKey, cfg.VendorRegion, guard)

	// Audit pipeline: always keep a bounded in-memory store; add Kafka when
	// brokers are configured.
	auditStore := audit.NewMemoryStore(0)
	sinks := []audit.Sink{auditStore}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("create kafka audit sink: %w", err)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(0)
	worker := audit.NewWorker(publisher.Inbox(), sinks...)

	gateService := gate.New(
		identityResolver,
		policy.New(cfg.RiskThreshold),
		ledgerStore,
		accountStore,
		publisher,
		log,
		gatemetrics.New(),
	)

	tokens := token.NewService(cfg.AdminJWTKey)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Account:     httptransport.NewAccountHandler(gateService, log),
		Admin:       httptransport.NewAdminHandler(accountStore, log),
		Health:      httptransport.NewHealthHandler(healthChecks),
		AdminTokens: tokens,
		Logger:      log,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting devicegate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
