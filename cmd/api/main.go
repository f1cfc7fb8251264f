package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradhire-backend/config"
	_ "gradhire-backend/docs" // Important for Swagger
	v1 "gradhire-backend/internal/delivery/http/v1"
	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/events"
	"gradhire-backend/internal/repository/postgres"
	"gradhire-backend/internal/usecase"
	"gradhire-backend/pkg/database"
	"gradhire-backend/pkg/eventlog"
	"gradhire-backend/pkg/logger"
	"gradhire-backend/pkg/redis"
	"gradhire-backend/pkg/validation"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// @title           GradHire API
// @version         1.0
// @description     Jobs, applications, gated messaging and notifications for graduate hiring.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.IsProduction())
	logger.Log.Info("Starting gradhire api", "port", cfg.Port, "event_bus", cfg.EventBus)
	eventLog := eventlog.New("gradhire-api", cfg.Environment)
	defer eventLog.Sync()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; optional)
	redisCfg := redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redisCfg); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		}
		defer redis.Close()
	}

	// 5. Setup Repositories
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	messageRepo := postgres.NewMessageRepository(dbPool)
	profileStore := postgres.NewProfileRepository(dbPool)
	verificationStore := postgres.NewVerificationRepository(dbPool)

	// 6. Setup Notification side and the event bus feeding it
	policy := usecase.DefaultNotificationPolicy()
	policy.JobMatchDedupWindow = cfg.JobMatchDedupWindow
	policy.MessageMergeWindow = cfg.MessageMergeWindow
	policy.FanOutBatchSize = cfg.FanOutBatchSize
	policy.FanOutMaxRetries = uint64(cfg.FanOutMaxRetries)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, jobRepo, profileStore, policy, eventLog)

	publisher, closePublisher, err := newPublisher(cfg, redisCfg, notificationUC, eventLog.Zap())
	if err != nil {
		logger.Log.Error("Failed to set up event bus", "bus", cfg.EventBus, "error", err)
		os.Exit(1)
	}
	defer closePublisher()

	// 7. Setup UseCases
	jobUC := usecase.NewJobUsecase(jobRepo, profileStore, verificationStore, publisher, eventLog)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, profileStore, publisher, eventLog)
	messagingUC := usecase.NewMessagingUsecase(applicationRepo, messageRepo, notificationUC, eventLog)
	verificationUC := usecase.NewVerificationUsecase(verificationStore, eventLog)

	healthDeps := map[string]usecase.Pinger{"database": dbPool}
	if redis.Client() != nil {
		healthDeps["redis"] = usecase.PingFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 8. Setup Router
	validation.RegisterGinValidators()
	router := v1.NewRouter(v1.RouterDeps{
		JobUC:          jobUC,
		ApplicationUC:  applicationUC,
		MessagingUC:    messagingUC,
		NotificationUC: notificationUC,
		VerificationUC: verificationUC,
		HealthUC:       healthUC,
		Config:         cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// newPublisher picks the event bus named by EVENT_BUS. The returned func
// releases its resources on shutdown.
func newPublisher(cfg *config.Config, redisCfg redis.Config, handler domain.EventHandler, zl *zap.Logger) (domain.EventPublisher, func(), error) {
	switch cfg.EventBus {
	case config.EventBusKafka:
		if err := events.EnsureTopic(cfg.KafkaBrokers, cfg.KafkaTopic, 3, zl); err != nil {
			logger.Log.Warn("Kafka topic check failed; writer will retry on publish", "error", err)
		}
		p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, zl)
		return p, p.Close, nil
	case config.EventBusInline:
		p := events.NewInlinePublisher(handler, zl)
		return p, p.Wait, nil
	default:
		opt, err := redis.AsynqOpt(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		client := asynq.NewClient(opt)
		return events.NewAsynqPublisher(client, zl), func() {
			if err := client.Close(); err != nil {
				logger.Log.Error("Failed to close asynq client", "error", err)
			}
		}, nil
	}
}
