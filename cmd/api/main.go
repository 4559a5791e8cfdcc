package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hospiq/scheduling-api/internal/config"
	"github.com/hospiq/scheduling-api/internal/handler"
	appointmentHandler "github.com/hospiq/scheduling-api/internal/handler/appointment"
	auditHandler "github.com/hospiq/scheduling-api/internal/handler/audit"
	doctorHandler "github.com/hospiq/scheduling-api/internal/handler/doctor"
	draftHandler "github.com/hospiq/scheduling-api/internal/handler/draft"
	hospitalHandler "github.com/hospiq/scheduling-api/internal/handler/hospital"
	patientHandler "github.com/hospiq/scheduling-api/internal/handler/patient"
	"github.com/hospiq/scheduling-api/internal/middleware"
	"github.com/hospiq/scheduling-api/internal/repository/postgres"
	"github.com/hospiq/scheduling-api/internal/router"
	auditService "github.com/hospiq/scheduling-api/internal/service/audit"
	"github.com/hospiq/scheduling-api/internal/service/availability"
	"github.com/hospiq/scheduling-api/internal/service/capacity"
	"github.com/hospiq/scheduling-api/internal/service/directory"
	"github.com/hospiq/scheduling-api/internal/service/draft"
	eventService "github.com/hospiq/scheduling-api/internal/service/event"
	"github.com/hospiq/scheduling-api/internal/service/scheduler"
	"github.com/hospiq/scheduling-api/internal/worker"
	"github.com/hospiq/scheduling-api/pkg/logger"
	"github.com/hospiq/scheduling-api/pkg/messaging"
	"github.com/hospiq/scheduling-api/pkg/messaging/redis"
	"github.com/hospiq/scheduling-api/pkg/metrics"
	"github.com/hospiq/scheduling-api/pkg/validator"
	outboxWorker "github.com/hospiq/scheduling-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	draftRepo := postgres.NewDraftRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	m := metrics.NewMetrics("hospiq", "scheduling")

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger, m)
		if err != nil {
			appLogger.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()
	} else {
		appLogger.Warn("redis disabled, events stay in the outbox until a worker relays them")
	}

	eventSvc := eventService.NewEventService(outboxRepo, broker, appLogger, m)

	auditSvc := auditService.NewService(auditRepo)
	auditLogger := auditService.NewAuditLogger(auditSvc, appLogger)

	availabilitySvc := availability.NewService(doctorRepo, availabilityRepo, m)
	availabilitySvc.SetMaxQuerySpan(cfg.Scheduler.MaxQuerySpan())

	ledger := capacity.NewStoreLedger(appointmentRepo)
	guard := scheduler.NewSlotGuard(cfg.Scheduler.GuardWait, m)

	schedulerSvc := scheduler.NewService(
		doctorRepo,
		patientRepo,
		appointmentRepo,
		availabilitySvc,
		ledger,
		guard,
		eventSvc,
		auditLogger,
		validator.New(),
		appLogger,
		m,
	)

	draftStore := draft.NewStore(cfg.Draft.TTL)
	draftSvc := draft.NewService(draftStore, schedulerSvc, availabilitySvc, draftRepo, appLogger, m)

	directorySvc := directory.NewService(hospitalRepo, doctorRepo, patientRepo)

	h := handler.NewHandler(db)
	hospitalH := hospitalHandler.NewHandler(directorySvc)
	doctorH := doctorHandler.NewHandler(directorySvc, availabilitySvc)
	patientH := patientHandler.NewHandler(directorySvc)
	appointmentH := appointmentHandler.NewHandler(schedulerSvc)
	draftH := draftHandler.NewHandler(draftSvc)
	auditH := auditHandler.NewHandler(auditSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		hospitalH,
		doctorH,
		patientH,
		appointmentH,
		draftH,
		auditH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    corsConfig,
			MetricsPrefix: "scheduling_http",
		},
	)
	r.Setup()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// The draft store lives in this process, so its janitor must too.
	janitor := worker.NewDraftJanitor(draftSvc, cfg.Draft.JanitorInterval, appLogger)
	go janitor.Start(workerCtx)

	if cfg.Outbox.Enabled && broker != nil {
		processor := outboxWorker.NewOutboxProcessor(eventSvc, cfg.Outbox.ToWorkerConfig(), appLogger, m)
		go processor.Start(workerCtx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal(err, "server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
