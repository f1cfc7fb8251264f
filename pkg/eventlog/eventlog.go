// Package eventlog writes structured records of domain events (publication,
// review, fan-out runs) and of best-effort side effects that failed.
package eventlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names a logged domain event.
type EventType string

const (
	EventJobPublished           EventType = "job_published"
	EventJobUnpublished         EventType = "job_unpublished"
	EventApplicationSubmitted   EventType = "application_submitted"
	EventApplicationReviewed    EventType = "application_reviewed"
	EventFanOutCompleted        EventType = "fanout_completed"
	EventNotificationFailed     EventType = "notification_failed"
	EventEventPublishFailed     EventType = "event_publish_failed"
	EventMessagingDenied        EventType = "messaging_denied"
	EventVerificationRecomputed EventType = "verification_recomputed"
)

// Record is one domain event entry.
type Record struct {
	Timestamp   time.Time
	Event       EventType
	SubjectType string // "job", "application", "user"
	SubjectID   string
	ActorID     string
	Err         error
	Details     map[string]any
}

// Logger provides structured logging for domain events.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds a production zap logger for the given service.
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return FromZap(logger, serviceName, environment)
}

// FromZap wraps an existing zap logger. Tests pass zaptest or observer loggers.
func FromZap(logger *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{
		zapLogger:   logger.Named("events"),
		serviceName: serviceName,
		environment: environment,
	}
}

// Nop discards everything.
func Nop() *Logger {
	return FromZap(zap.NewNop(), "", "")
}

// Log writes a record. Failures are logged at error level.
func (l *Logger) Log(_ context.Context, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	level := zapcore.InfoLevel
	switch rec.Event {
	case EventNotificationFailed, EventEventPublishFailed:
		level = zapcore.ErrorLevel
	case EventMessagingDenied:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(rec.Event)),
		zap.Time("occurred_at", rec.Timestamp),
	}
	if rec.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", rec.SubjectType))
	}
	if rec.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", rec.SubjectID))
	}
	if rec.ActorID != "" {
		fields = append(fields, zap.String("actor", HashValue(rec.ActorID)))
	}
	if rec.Err != nil {
		fields = append(fields, zap.Error(rec.Err))
	}
	if len(rec.Details) > 0 {
		fields = append(fields, zap.Any("details", rec.Details))
	}

	l.zapLogger.Log(level, string(rec.Event), fields...)
}

// Failure logs a best-effort side effect that did not go through.
func (l *Logger) Failure(ctx context.Context, event EventType, subjectType, subjectID string, err error, details map[string]any) {
	l.Log(ctx, Record{
		Event:       event,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Err:         err,
		Details:     details,
	})
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.zapLogger
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// HashValue creates a short SHA256 digest so user ids stay out of event logs.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
