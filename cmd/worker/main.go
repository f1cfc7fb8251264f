package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradhire-backend/config"
	"gradhire-backend/internal/events"
	"gradhire-backend/internal/repository/postgres"
	"gradhire-backend/internal/usecase"
	"gradhire-backend/internal/worker"
	"gradhire-backend/pkg/database"
	"gradhire-backend/pkg/eventlog"
	"gradhire-backend/pkg/logger"
	"gradhire-backend/pkg/redis"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.IsProduction())
	eventLog := eventlog.New("gradhire-worker", cfg.Environment)
	defer eventLog.Sync()

	if cfg.EventBus == config.EventBusInline {
		logger.Log.Info("EVENT_BUS=inline runs notification handling inside the api; worker has nothing to do")
		return
	}

	dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	policy := usecase.DefaultNotificationPolicy()
	policy.JobMatchDedupWindow = cfg.JobMatchDedupWindow
	policy.MessageMergeWindow = cfg.MessageMergeWindow
	policy.FanOutBatchSize = cfg.FanOutBatchSize
	policy.FanOutMaxRetries = uint64(cfg.FanOutMaxRetries)
	notificationUC := usecase.NewNotificationUsecase(
		postgres.NewNotificationRepository(dbPool),
		postgres.NewJobRepository(dbPool),
		postgres.NewProfileRepository(dbPool),
		policy,
		eventLog,
	)

	metricsSrv := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Metrics listener failed", "error", err)
		}
	}()
	defer metricsSrv.Close()

	switch cfg.EventBus {
	case config.EventBusKafka:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer := events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, notificationUC, eventLog.Zap())
		defer consumer.Close()

		logger.Log.Info("Worker consuming kafka", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
		if err := consumer.Run(ctx); err != nil {
			logger.Log.Error("Kafka consumer stopped", "error", err)
		}
	default:
		opt, err := redis.AsynqOpt(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
		if err != nil {
			logger.Log.Error("Invalid redis configuration", "error", err)
			os.Exit(1)
		}

		server := worker.NewServer(opt, cfg.WorkerConcurrency)
		mux := worker.NewServeMux(worker.NewEventHandler(notificationUC))

		logger.Log.Info("Worker service started", "queue", events.QueueNotifications, "concurrency", cfg.WorkerConcurrency)
		// Run blocks until SIGINT/SIGTERM and drains in-flight tasks.
		if err := server.Run(mux); err != nil {
			logger.Log.Error("Worker server stopped", "error", err)
		}
	}
}
