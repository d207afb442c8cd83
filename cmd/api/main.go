package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dmartinel/turnosms/cmd/mainconfig"
	"github.com/dmartinel/turnosms/internal/api/router"
	appconfig "github.com/dmartinel/turnosms/internal/config"
	"github.com/dmartinel/turnosms/internal/conversation"
	"github.com/dmartinel/turnosms/internal/http/handlers"
	"github.com/dmartinel/turnosms/internal/messaging"
	"github.com/dmartinel/turnosms/internal/observability/metrics"
	"github.com/dmartinel/turnosms/internal/reminders"
	"github.com/dmartinel/turnosms/internal/schedule"
	"github.com/dmartinel/turnosms/internal/session"
	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/internal/tenancy"
	"github.com/dmartinel/turnosms/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting turnosms API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	businesses := store.NewBusinessRepository(pool)
	customers := store.NewCustomerRepository(pool)
	employees := store.NewEmployeeRepository(pool)
	availability := store.NewAvailabilityRepository(pool)
	appointments := store.NewAppointmentRepository(pool)

	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTimeout)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTimeout)
		logger.Info("using in-memory session store")
	}

	convMetrics := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)
	msgMetrics := metrics.NewMessagingMetrics(prometheus.DefaultRegisterer)

	sender := messaging.NewTwilioSender(
		cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber,
		msgMetrics, logger,
	)

	var queue reminders.Queue
	if cfg.UseMemoryQueue {
		queue = reminders.NewMemoryQueue(256, logger)
		logger.Info("using in-memory reminder queue")
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue = reminders.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ReminderQueueURL)
	}
	scheduler := reminders.NewScheduler(queue, customers, cfg.ReminderLeadTime, logger)

	slots := schedule.NewEngine(availability, appointments, schedule.DefaultDuration, logger)

	engine := conversation.NewEngine(conversation.EngineConfig{
		Sessions:     sessions,
		Customers:    customers,
		Employees:    employees,
		Appointments: appointments,
		Slots:        slots,
		Sender:       sender,
		Reminders:    scheduler,
		Logger:       logger,
		Metrics:      convMetrics,
		Location:     loc,
	})

	var defaultBusinessID uuid.UUID
	if cfg.DefaultBusinessID != "" {
		defaultBusinessID, err = uuid.Parse(cfg.DefaultBusinessID)
		if err != nil {
			logger.Error("invalid DEFAULT_BUSINESS_ID", "error", err)
			os.Exit(1)
		}
	}
	tenants := tenancy.NewResolver(businesses, defaultBusinessID, logger)

	webhook := messaging.NewWebhookHandler(
		engine, tenants,
		cfg.TwilioAuthToken, cfg.PublicURL,
		msgMetrics, logger,
	)

	r := router.New(&router.Config{
		Logger:          logger,
		Webhook:         webhook,
		AdminSessions:   handlers.NewAdminSessionsHandler(sessions, logger),
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
