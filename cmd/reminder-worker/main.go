package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmartinel/turnosms/cmd/mainconfig"
	appconfig "github.com/dmartinel/turnosms/internal/config"
	"github.com/dmartinel/turnosms/internal/messaging"
	"github.com/dmartinel/turnosms/internal/observability/metrics"
	"github.com/dmartinel/turnosms/internal/reminders"
	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting turnosms reminder worker",
		"env", cfg.Env,
		"workers", cfg.ReminderWorkers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	appointments := store.NewAppointmentRepository(pool)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := reminders.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ReminderQueueURL)

	msgMetrics := metrics.NewMessagingMetrics(prometheus.DefaultRegisterer)
	sender := messaging.NewTwilioSender(
		cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber,
		msgMetrics, logger,
	)

	workers := cfg.ReminderWorkers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := reminders.NewWorker(queue, appointments, sender, logger)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped with error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down reminder worker")
	wg.Wait()
	logger.Info("reminder worker stopped")
}
