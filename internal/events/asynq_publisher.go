package events

import (
	"context"
	"errors"
	"fmt"

	"gradhire-backend/internal/domain"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueNotifications is the asynq queue the worker drains.
const QueueNotifications = "notifications"

const maxTaskRetry = 3

// TaskEnqueuer is the part of *asynq.Client the publisher needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher enqueues domain events as asynq tasks.
type AsynqPublisher struct {
	client TaskEnqueuer
	logger *zap.Logger
}

func NewAsynqPublisher(client TaskEnqueuer, logger *zap.Logger) *AsynqPublisher {
	return &AsynqPublisher{
		client: client,
		logger: logger.Named("asynq_publisher"),
	}
}

func (p *AsynqPublisher) PublishJobPublished(ctx context.Context, e domain.JobPublished) error {
	task, err := NewJobPublishedTask(e)
	if err != nil {
		return err
	}
	return p.enqueue(ctx, task, e.EventID)
}

func (p *AsynqPublisher) PublishApplicationStatusChanged(ctx context.Context, e domain.ApplicationStatusChanged) error {
	task, err := NewApplicationStatusChangedTask(e)
	if err != nil {
		return err
	}
	return p.enqueue(ctx, task, e.EventID)
}

// enqueue uses the event id as task id, so a repeated publish of the same
// event is a no-op while the first task is still retained.
func (p *AsynqPublisher) enqueue(ctx context.Context, task *asynq.Task, eventID string) error {
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxTaskRetry),
		asynq.TaskID(eventID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		p.logger.Debug("event already enqueued", zap.String("event_id", eventID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	p.logger.Info("event enqueued",
		zap.String("task_type", task.Type()),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
	)
	return nil
}
