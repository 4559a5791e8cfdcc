package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hospiq/scheduling-api/internal/email"
	"github.com/hospiq/scheduling-api/internal/repository/postgres"
	eventService "github.com/hospiq/scheduling-api/internal/service/event"
	"github.com/hospiq/scheduling-api/internal/worker"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/messaging"
	"github.com/hospiq/scheduling-api/pkg/messaging/redis"
	"github.com/hospiq/scheduling-api/pkg/metrics"
	outboxWorker "github.com/hospiq/scheduling-api/pkg/worker"
)

// workerConfig comes straight from the environment; the worker ships as
// a container and carries no config file.
type workerConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HealthAddr  string `envconfig:"HEALTH_ADDR" default:":8081"`

	OutboxBatchSize       int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval    time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxCleanupInterval time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"1h"`

	AuditRetentionDays   int           `envconfig:"AUDIT_RETENTION_DAYS" default:"90"`
	AuditCleanupInterval time.Duration `envconfig:"AUDIT_CLEANUP_INTERVAL" default:"24h"`

	SMTPEnabled  bool   `envconfig:"SMTP_ENABLED" default:"false"`
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"bookings@hospiq.io"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
	})

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("hospiq", "scheduling_worker")

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &log.Logger, m)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)

	eventSvc := eventService.NewEventService(outboxRepo, broker, appLogger, m)

	processor := outboxWorker.NewOutboxProcessor(eventSvc, outboxWorker.OutboxProcessorConfig{
		BatchSize:       cfg.OutboxBatchSize,
		PollInterval:    cfg.OutboxPollInterval,
		CleanupInterval: cfg.OutboxCleanupInterval,
	}, appLogger, m)

	auditCleanup := worker.NewAuditCleanupWorker(auditRepo, cfg.AuditRetentionDays, cfg.AuditCleanupInterval, appLogger)

	var mailer email.Service
	if cfg.SMTPEnabled {
		mailer = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		mailer = email.NewLogService(appLogger)
	}
	notifier := worker.NewNotifier(messaging.NewBrokerAdapter(broker), mailer, patientRepo, doctorRepo, appLogger)

	serveHealth(cfg.HealthAddr, db, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		auditCleanup.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Start(ctx); err != nil {
			appLogger.Error(err, "notifier stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down")
	cancel()
	wg.Wait()
	appLogger.Info("worker exited properly")
}

func serveHealth(addr string, db *sqlx.DB, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLogger.Error(err, "health server failed")
			os.Exit(1)
		}
	}()
}
