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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"herald/internal/eventlog"
	"herald/internal/ingest"
	"herald/internal/ingest/handler"
	"herald/internal/ingest/kafka"
	jwttoken "herald/internal/jwt_token"
	"herald/internal/notifier"
	"herald/internal/notifier/delivery"
	"herald/internal/notifier/delivery/slacksink"
	"herald/internal/notifier/message"
	"herald/internal/platform/config"
	"herald/internal/platform/httpserver"
	"herald/internal/platform/logger"
	"herald/internal/platform/metrics"
	"herald/internal/platform/middleware"
	"herald/internal/policy"
	httptransport "herald/internal/transport/http"
	"herald/internal/unitofwork"
	"herald/pkg/platform/circuit"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("herald stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("herald stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	pol := policy.Resolve(policy.EnvLookup, policy.WithLogger(log))

	sink := delivery.NewGuardedSink(
		slacksink.New(
			slacksink.WithAPIURL(cfg.Slack.APIURL),
			slacksink.WithRateLimit(cfg.Slack.RatePerSecond),
			slacksink.WithLogger(log),
		),
		circuit.New("slack",
			circuit.WithFailureThreshold(cfg.Slack.BreakerThreshold),
			circuit.WithCooldown(cfg.Slack.BreakerCooldown),
		),
		log,
	)
	factory := notifier.NewFactory(pol, sink,
		notifier.WithLogger(log),
		notifier.WithMetrics(m),
		notifier.WithRenderer(message.NewRenderer(cfg.Location())),
		notifier.WithDeliveryTimeout(cfg.Slack.DeliveryTimeout),
	)

	var (
		runner   unitofwork.Runner
		store    eventlog.Store
		database httptransport.Pinger
	)
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		pg := eventlog.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		runner = unitofwork.NewSQLRunner(db,
			unitofwork.WithTimeout(cfg.Database.TxTimeout),
			unitofwork.WithLogger(log),
		)
		store = pg
		database = db
		log.Info("event log backed by postgres")
	} else {
		runner = unitofwork.NewMemoryRunner(log)
		store = eventlog.NewInMemoryStore()
		log.Info("event log kept in memory")
	}

	processor := ingest.NewProcessor(runner, store, factory,
		ingest.WithLogger(log),
		ingest.WithDefaultHost(cfg.Server.PlatformBaseURL),
	)

	var validator middleware.JWTValidator
	if cfg.Server.IngestJWTSecret != "" {
		validator = jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(
			cfg.Server.IngestJWTSecret,
			cfg.Server.IngestJWTIssuer,
			cfg.Server.IngestJWTAudience,
		))
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Ingest:    handler.New(processor, store, log),
		Validator: validator,
		Gatherer:  registry,
		Database:  database,
		Logger:    log,
	})
	// A batch may carry many admitted events, each bounded by the delivery timeout.
	srv := httpserver.New(cfg.Server.Addr, router,
		httpserver.WithWriteTimeout(cfg.Server.WriteTimeout),
	)

	var consumer *kafka.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group)
		if err != nil {
			return err
		}
		defer client.Close()
		consumer = kafka.NewConsumer(client, processor, log)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting herald", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			log.Info("consuming events from kafka",
				"topic", cfg.Kafka.Topic,
				"group", cfg.Kafka.Group,
			)
			return consumer.Run(gctx)
		})
	}

	return g.Wait()
}
