package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bigfive/internal/assessment"
	narrativecache "bigfive/internal/narrative/cache"
	narrativehandler "bigfive/internal/narrative/handler"
	"bigfive/internal/narrative/llm"
	narrativemetrics "bigfive/internal/narrative/metrics"
	"bigfive/internal/narrative/models"
	narrativeservice "bigfive/internal/narrative/service"
	"bigfive/internal/platform/config"
	"bigfive/internal/platform/httpserver"
	"bigfive/internal/platform/logger"
	"bigfive/internal/platform/metrics"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/platform/postgres"
	"bigfive/internal/platform/redis"
	resultshandler "bigfive/internal/results/handler"
	resultsmetrics "bigfive/internal/results/metrics"
	resultsservice "bigfive/internal/results/service"
	resultsstore "bigfive/internal/results/store"
	runshandler "bigfive/internal/runs/handler"
	runsmetrics "bigfive/internal/runs/metrics"
	runsservice "bigfive/internal/runs/service"
	runsstore "bigfive/internal/runs/store"
	sessionhandler "bigfive/internal/session/handler"
	sessionmetrics "bigfive/internal/session/metrics"
	sessionservice "bigfive/internal/session/service"
	sessionstore "bigfive/internal/session/store"
	audit "bigfive/pkg/platform/audit"
	auditpublisher "bigfive/pkg/platform/audit/publisher"
	kafkaaudit "bigfive/pkg/platform/audit/publishers/kafka"
	auditmemory "bigfive/pkg/platform/audit/store/memory"
	"bigfive/pkg/platform/circuit"
	"bigfive/pkg/platform/middleware/metadata"
	"bigfive/pkg/platform/middleware/requesttime"
)

// main wires infrastructure into the services and serves until SIGINT or
// SIGTERM.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	redis *redis.Client
	db    *sql.DB
	audit *kafkaaudit.Store
}

func (i *infra) close(log *slog.Logger) {
	if i.audit != nil {
		i.audit.Close()
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	in.redis = rc

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		in.close(log)
		return nil, err
	}
	if db != nil {
		in.db = db
		if err := postgres.MigrateRuns(ctx, db, cfg.Postgres.RunsTable); err != nil {
			in.close(log)
			return nil, err
		}
		if err := postgres.MigrateResults(ctx, db, cfg.Postgres.ResultsTable); err != nil {
			in.close(log)
			return nil, err
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		st, err := kafkaaudit.New(cfg.Kafka.Brokers, kafkaaudit.WithTopic(cfg.Kafka.AuditTopic))
		if err != nil {
			in.close(log)
			return nil, err
		}
		in.audit = st
		if err := st.EnsureTopic(ctx, 1, 1); err != nil {
			log.WarnContext(ctx, "audit topic bootstrap failed", "topic", st.Topic(), "error", err)
		}
	}
	return in, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect infrastructure: %w", err)
	}
	defer in.close(log)

	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if in.audit != nil {
		auditStore = in.audit
	}
	auditPub := auditpublisher.NewPublisher(auditStore,
		auditpublisher.WithAsyncBuffer(cfg.Kafka.AuditBuffer),
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics()),
	)
	defer auditPub.Close()

	catalog := assessment.DefaultCatalog()

	runsMetrics := runsmetrics.New()
	var backends []runsstore.Named
	if in.db != nil {
		backends = append(backends, runsstore.Named{Name: "postgres", Backend: runsstore.NewPostgresStore(in.db, cfg.Postgres.RunsTable)})
	}
	if in.redis != nil {
		backends = append(backends, runsstore.Named{Name: "redis", Backend: runsstore.NewRedisStore(in.redis.Client)})
	}
	var runStore runsservice.Store = runsstore.NewInMemoryStore()
	if len(backends) > 0 {
		runStore = runsstore.NewFallbackStore(backends,
			runsstore.WithLogger(log),
			runsstore.WithMetrics(runsMetrics),
			runsstore.WithBreakerOptions(circuit.WithFailureThreshold(3), circuit.WithCooldown(30*time.Second)),
		)
	}
	runs := runsservice.New(catalog, runStore,
		runsservice.WithLogger(log),
		runsservice.WithMetrics(runsMetrics),
		runsservice.WithAuditPublisher(auditPub),
		runsservice.WithRecompute(cfg.RecomputeOnSave),
	)

	var resultStore resultsservice.Store = resultsstore.NewInMemoryStore()
	switch {
	case in.db != nil:
		resultStore = resultsstore.NewPostgresStore(in.db, cfg.Postgres.ResultsTable)
	case in.redis != nil:
		resultStore = resultsstore.NewRedisStore(in.redis.Client)
	}
	results := resultsservice.New(catalog, resultStore,
		resultsservice.WithLogger(log),
		resultsservice.WithMetrics(resultsmetrics.New()),
		resultsservice.WithAuditPublisher(auditPub),
	)

	narrative, err := buildNarrative(ctx, cfg, log, catalog, runs, in, auditPub)
	if err != nil {
		return err
	}

	sessions := sessionstore.NewInMemoryStore()
	sessionSvc := sessionservice.New(catalog, sessions,
		sessionservice.WithLogger(log),
		sessionservice.WithMetrics(sessionmetrics.New()),
		sessionservice.WithAuditPublisher(auditPub),
		sessionservice.WithTTL(cfg.SessionTTL),
	)

	httpMetrics := metrics.New()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log, httpMetrics))
	r.Use(middleware.Recovery(log, httpMetrics))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", readiness(in))

	runshandler.New(runs, log).Register(r)
	resultshandler.New(results, log).Register(r)
	narrativehandler.New(narrative, log).Register(r)
	sessionhandler.New(sessionSvc, log).Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting bigfive", "addr", cfg.Addr)
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		sessions.RunSweeper(gctx, time.Minute, log)
		return nil
	})
	return g.Wait()
}

func buildNarrative(
	ctx context.Context,
	cfg config.Server,
	log *slog.Logger,
	catalog *assessment.Catalog,
	runs narrativeservice.RunReader,
	in *infra,
	auditPub narrativeservice.AuditPublisher,
) (*narrativeservice.Service, error) {
	var cache narrativeservice.Cache = narrativecache.NewMemory()
	if in.redis != nil {
		cache = narrativecache.NewRedis(in.redis.Client, narrativecache.WithEntryTTL(30*24*time.Hour))
	}

	opts := []narrativeservice.Option{
		narrativeservice.WithLogger(log),
		narrativeservice.WithMetrics(narrativemetrics.New()),
		narrativeservice.WithAuditPublisher(auditPub),
		narrativeservice.WithTiming(cfg.Narrative.LockTTL, cfg.Narrative.Wait, cfg.Narrative.Poll),
	}
	if cfg.Narrative.GeminiAPIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.Narrative.GeminiAPIKey, cfg.Narrative.GeminiModel,
			llm.WithResponseSchema(llm.LinesSchema(models.LineCount)))
		if err != nil {
			return nil, fmt.Errorf("narrative model: %w", err)
		}
		breaker := circuit.New("narrative_llm", circuit.WithFailureThreshold(5), circuit.WithCooldown(time.Minute))
		opts = append(opts, narrativeservice.WithGenerator(llm.NewGuarded(gemini, breaker, log)))
	} else {
		log.InfoContext(ctx, "GEMINI_API_KEY not set, narratives use deterministic lines")
	}
	return narrativeservice.New(catalog, runs, cache, opts...), nil
}

func readiness(in *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if in.redis != nil {
			if err := in.redis.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if in.db != nil {
			if err := in.db.PingContext(ctx); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if in.audit != nil {
			if err := in.audit.Ping(ctx); err != nil {
				http.Error(w, "audit stream unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
