package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/bookedbarber/booking-service/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/bookedbarber/booking-service/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/bookedbarber/booking-service/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/bookedbarber/booking-service/internal/api/handlers/get_available_slots"
	getBarberAppointmentsHandler "github.com/bookedbarber/booking-service/internal/api/handlers/get_barber_appointments"
	rescheduleAppointmentHandler "github.com/bookedbarber/booking-service/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/bookedbarber/booking-service/internal/api/handlers/update_appointment_status"
	"github.com/bookedbarber/booking-service/internal/api/middleware"
	"github.com/bookedbarber/booking-service/internal/config"
	"github.com/bookedbarber/booking-service/internal/events"
	"github.com/bookedbarber/booking-service/internal/infra/cache/slotcache"
	appointmentRepo "github.com/bookedbarber/booking-service/internal/infra/storage/appointment"
	scheduleRepo "github.com/bookedbarber/booking-service/internal/infra/storage/schedule"
	calendarSyncClient "github.com/bookedbarber/booking-service/internal/integrations/calendarsync"
	appointmentsService "github.com/bookedbarber/booking-service/internal/service/appointments"
	policyService "github.com/bookedbarber/booking-service/internal/service/policy"
	createAppointmentUC "github.com/bookedbarber/booking-service/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/bookedbarber/booking-service/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/bookedbarber/booking-service/internal/usecase/reschedule_appointment"
	"github.com/bookedbarber/booking-service/pkg/dbmetrics"
	"github.com/bookedbarber/booking-service/pkg/logger"
	"github.com/bookedbarber/booking-service/pkg/metrics"
	"github.com/bookedbarber/booking-service/pkg/simpletxmanager"
	"github.com/bookedbarber/booking-service/pkg/txmanager"
)

func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-service...")

	// Booking policy comes from configuration; the engine only reads it.
	policyProvider, err := policyService.NewProvider(cfg.Booking)
	if err != nil {
		log.Fatal("Invalid booking configuration: %v", err)
	}
	location := policyProvider.Location()

	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Slot cache: redis when enabled, otherwise a no-op cache that forces
	// every read to recompute.
	var cacheRecorder slotcache.Recorder = slotcache.NopRecorder{}
	if cfg.Metrics.Enabled {
		cacheRecorder = metricsCollector
	}

	var slotCache slotcache.Cache = slotcache.NewNoopCache()
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:        cfg.Cache.Addr,
			Password:    cfg.Cache.Password,
			DB:          cfg.Cache.DB,
			DialTimeout: time.Duration(cfg.Cache.DialTimeoutMS) * time.Millisecond,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			// Degraded from the start: the engine stays correct on misses.
			log.Warn("Cache store unreachable at %s, operating degraded: %v", cfg.Cache.Addr, err)
		} else {
			log.Info("Connected to cache store at %s", cfg.Cache.Addr)
		}
		slotCache = slotcache.NewRedisCache(redisClient, log, cacheRecorder)
	} else {
		log.Info("Slot cache disabled, availability always recomputed")
	}
	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	// Optional calendar-sync collaborator for externally blocked intervals.
	var busyProvider getAvailableSlotsUC.BusyProvider
	if cfg.CalendarSync.Enabled {
		busyProvider = calendarSyncClient.NewClient(
			cfg.CalendarSync.URL,
			time.Duration(cfg.CalendarSync.TimeoutSeconds)*time.Second,
			log,
		)
		log.Info("Calendar sync client initialized (URL=%s timeout=%ds)",
			cfg.CalendarSync.URL, cfg.CalendarSync.TimeoutSeconds)
	}

	var (
		appointmentRepository *appointmentRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
	)

	// Both managers satisfy the transaction surface the use cases declare.
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Lifecycle events fan out to subscribers off the booking path.
	dispatcher := events.NewDispatcher(log, 100, events.NewLogSubscriber(log))
	defer dispatcher.Close()

	getAvailableSlotsUseCase := getAvailableSlotsUC.New(
		appointmentRepository,
		scheduleRepository,
		policyProvider,
		busyProvider,
		slotCache,
		cacheTTL,
		&getAvailableSlotsUC.RealTimeProvider{},
		log,
	)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		policyProvider,
		getAvailableSlotsUseCase,
		slotCache,
		dispatcher,
		txMgr,
		log,
	)

	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		policyProvider,
		getAvailableSlotsUseCase,
		slotCache,
		dispatcher,
		txMgr,
		log,
	)

	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		slotCache,
		dispatcher,
		txMgr,
		location,
		log,
	)

	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, location, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, location, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getBarberAppointments := getBarberAppointmentsHandler.NewHandler(appointmentsSvc, location, log)

	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes.
	api.HandleFunc("/barbershops/{shopId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Protected routes require the X-User-ID header set by the gateway.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/barbershops/{shopId}/barbers/{barberId}/appointments",
		getBarberAppointments.Handle).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	close(stopMetricsCh)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
