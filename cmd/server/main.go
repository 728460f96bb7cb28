package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"assetcore/internal/ledger"
	ledgerhandler "assetcore/internal/ledger/handler"
	ledgermetrics "assetcore/internal/ledger/metrics"
	"assetcore/internal/ledger/store/breaker"
	"assetcore/internal/ledger/store/memory"
	pgstore "assetcore/internal/ledger/store/postgres"
	redisstore "assetcore/internal/ledger/store/redis"
	"assetcore/internal/ledger/stream"
	"assetcore/internal/platform/config"
	"assetcore/internal/platform/httpserver"
	"assetcore/internal/platform/kafka"
	"assetcore/internal/platform/logger"
	"assetcore/internal/platform/metrics"
	"assetcore/internal/platform/postgres"
	"assetcore/internal/platform/redis"
	"assetcore/internal/policy"
	"assetcore/internal/verification"
	verificationhandler "assetcore/internal/verification/handler"
	verificationmetrics "assetcore/internal/verification/metrics"
	"assetcore/pkg/platform/httputil"
	"assetcore/pkg/platform/middleware/metadata"
	"assetcore/pkg/platform/middleware/requesttime"
)

// main loads configuration, wires the ledger backend and serves the API
// until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		slog.Error("assetcore exited", "error", err)
		os.Exit(1)
	}
}

type healthCheck func(ctx context.Context) error

func run() error {
	cfg, err := config.Load(os.Getenv("ASSETCORE_CONFIG"))
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policies, err := policy.LoadRegistry(cfg.Policy.File, cfg.Policy.Default)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	store, checks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithMetrics(ledgermetrics.New()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewProducer(ctx, cfg.Kafka)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return err
		}
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(stream.NewPublisher(client, cfg.Kafka.Topic)))
		log.Info("ledger event stream enabled", "topic", cfg.Kafka.Topic)
	}

	ledgerSvc, err := ledger.New(store, ledgerOpts...)
	if err != nil {
		return err
	}
	verifySvc, err := verification.New(ledgerSvc, policies,
		verification.WithLogger(log),
		verification.WithMetrics(verificationmetrics.New()),
		verification.WithRetry(cfg.Retry.Attempts, cfg.Retry.Delay),
		verification.WithPipelineTrace(cfg.Ledger.Trace),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.NewHTTP().Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.RequestMetadata)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", healthHandler(checks))
	ledgerhandler.New(ledgerSvc, log).Register(r)
	verificationhandler.New(verifySvc, log).Register(r)

	srv := httpserver.New(cfg.Server, r)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting assetcore",
			"addr", cfg.Server.Addr,
			"ledger_backend", cfg.Ledger.Backend,
			"default_policy", policies.DefaultID(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore builds the configured ledger backend. Remote backends are guarded
// by a circuit breaker.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (ledger.Store, []healthCheck, func(), error) {
	guard := func(next ledger.Store) ledger.Store {
		return breaker.New(next, breaker.Settings{
			Name:             "ledger-" + cfg.Ledger.Backend,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, log)
	}

	switch cfg.Ledger.Backend {
	case config.BackendPostgres:
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				return nil, nil, nil, err
			}
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		return guard(pgstore.New(pool)), []healthCheck{pool.Ping}, pool.Close, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		store := redisstore.NewRedis(client.Client,
			redisstore.WithCapacity(cfg.Ledger.Capacity),
			redisstore.WithCASRetries(cfg.Redis.CASRetries),
			redisstore.WithLogger(log),
		)
		return guard(store), []healthCheck{client.Health}, func() { _ = client.Close() }, nil

	default:
		log.Warn("using in-memory ledger; events are lost on restart", "capacity", cfg.Ledger.Capacity)
		return memory.NewInMemoryStore(memory.WithCapacity(cfg.Ledger.Capacity)), nil, func() {}, nil
	}
}

func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
