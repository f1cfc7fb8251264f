package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/events"
	"gradhire-backend/internal/metrics"
	"gradhire-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// EventHandler consumes domain event tasks and forwards them to the
// notification usecase.
type EventHandler struct {
	handler domain.EventHandler
	logger  *slog.Logger
}

func NewEventHandler(handler domain.EventHandler) *EventHandler {
	return &EventHandler{
		handler: handler,
		logger:  logger.Log.With(slog.String("component", "worker")),
	}
}

// ProcessTask implements asynq.Handler.
func (h *EventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger.With(slog.String("task_type", t.Type()))
	if id, ok := asynq.GetTaskID(ctx); ok {
		log = log.With(slog.String("task_id", id))
	}

	err := events.Dispatch(ctx, h.handler, t.Type(), t.Payload())
	switch {
	case err == nil:
		log.Debug("task processed")
		return nil
	case errors.Is(err, events.ErrMalformedPayload), errors.Is(err, events.ErrUnknownEvent):
		log.Error("dropping task", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		retried, _ := asynq.GetRetryCount(ctx)
		log.Warn("task failed", slog.Any("error", err), slog.Int("retry", retried))
		return err
	}
}

// NewServeMux routes every event task type to h behind the metrics middleware.
func NewServeMux(h *EventHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(events.TypeJobPublished, h)
	mux.Handle(events.TypeApplicationStatusChanged, h)
	return mux
}

// NewServer builds the asynq server draining the notifications queue.
func NewServer(redisOpt asynq.RedisConnOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{events.QueueNotifications: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Log.ErrorContext(ctx, "task error",
				slog.String("task_type", task.Type()),
				slog.Any("error", err),
			)
		}),
	})
}
