package events

import (
	"context"
	"sync"
	"time"

	"gradhire-backend/internal/domain"

	"go.uber.org/zap"
)

const inlineTimeout = 2 * time.Minute

// InlinePublisher runs the handler in-process on a goroutine. The request
// context is detached so handling outlives the HTTP response.
type InlinePublisher struct {
	handler domain.EventHandler
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewInlinePublisher(handler domain.EventHandler, logger *zap.Logger) *InlinePublisher {
	return &InlinePublisher{
		handler: handler,
		logger:  logger.Named("inline_publisher"),
	}
}

func (p *InlinePublisher) PublishJobPublished(ctx context.Context, e domain.JobPublished) error {
	p.run(ctx, TypeJobPublished, e.EventID, func(ctx context.Context) error {
		return p.handler.HandleJobPublished(ctx, e)
	})
	return nil
}

func (p *InlinePublisher) PublishApplicationStatusChanged(ctx context.Context, e domain.ApplicationStatusChanged) error {
	p.run(ctx, TypeApplicationStatusChanged, e.EventID, func(ctx context.Context) error {
		return p.handler.HandleApplicationStatusChanged(ctx, e)
	})
	return nil
}

func (p *InlinePublisher) run(parent context.Context, eventType, eventID string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), inlineTimeout)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("event handler panicked",
					zap.Any("panic", r),
					zap.String("event_type", eventType),
					zap.String("event_id", eventID),
				)
			}
		}()
		if err := fn(ctx); err != nil {
			p.logger.Error("event handler failed",
				zap.Error(err),
				zap.String("event_type", eventType),
				zap.String("event_id", eventID),
			)
		}
	}()
}

// Wait blocks until every started handler has returned. Used on shutdown.
func (p *InlinePublisher) Wait() {
	p.wg.Wait()
}
