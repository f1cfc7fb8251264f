package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"gradhire-backend/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// recordingHandler is a domain.EventHandler that remembers what it saw.
type recordingHandler struct {
	mu        sync.Mutex
	published []domain.JobPublished
	changed   []domain.ApplicationStatusChanged
	failures  int
}

func (h *recordingHandler) HandleJobPublished(_ context.Context, e domain.JobPublished) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errors.New("store unavailable")
	}
	h.published = append(h.published, e)
	return nil
}

func (h *recordingHandler) HandleApplicationStatusChanged(_ context.Context, e domain.ApplicationStatusChanged) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errors.New("store unavailable")
	}
	h.changed = append(h.changed, e)
	return nil
}

func jobPublished() domain.JobPublished {
	return domain.JobPublished{
		EventID:    "evt-1",
		JobID:      42,
		EmployerID: "emp-1",
		OccurredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func statusChanged() domain.ApplicationStatusChanged {
	return domain.ApplicationStatusChanged{
		EventID:       "evt-2",
		ApplicationID: 7,
		JobID:         42,
		JobseekerID:   "js-1",
		EmployerID:    "emp-1",
		OldStatus:     domain.ApplicationStatusPending,
		NewStatus:     domain.ApplicationStatusShortlisted,
	}
}

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}
	task, err := NewJobPublishedTask(jobPublished())
	require.NoError(t, err)

	require.NoError(t, Dispatch(context.Background(), h, task.Type(), task.Payload()))
	require.Len(t, h.published, 1)
	assert.Equal(t, jobPublished(), h.published[0])

	task, err = NewApplicationStatusChangedTask(statusChanged())
	require.NoError(t, err)
	require.NoError(t, Dispatch(context.Background(), h, task.Type(), task.Payload()))
	require.Len(t, h.changed, 1)
	assert.Equal(t, domain.ApplicationStatusShortlisted, h.changed[0].NewStatus)

	err = Dispatch(context.Background(), h, "job:archived", nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	err = Dispatch(context.Background(), h, TypeJobPublished, []byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

// MockEnqueuer implements TaskEnqueuer for testing
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func taskID(opts []asynq.Option) string {
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			return opt.Value().(string)
		}
	}
	return ""
}

func TestAsynqPublisher(t *testing.T) {
	t.Run("enqueues with the event id as task id", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
			return task.Type() == TypeJobPublished
		}), mock.MatchedBy(func(opts []asynq.Option) bool {
			return taskID(opts) == "evt-1"
		})).Return(&asynq.TaskInfo{ID: "evt-1", Queue: QueueNotifications}, nil)
		p := NewAsynqPublisher(client, zaptest.NewLogger(t))

		require.NoError(t, p.PublishJobPublished(context.Background(), jobPublished()))
		client.AssertExpectations(t)
	})

	t.Run("duplicate task id is not an error", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict)
		p := NewAsynqPublisher(client, zaptest.NewLogger(t))

		assert.NoError(t, p.PublishApplicationStatusChanged(context.Background(), statusChanged()))
	})

	t.Run("redis failure surfaces", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))
		p := NewAsynqPublisher(client, zaptest.NewLogger(t))

		err := p.PublishApplicationStatusChanged(context.Background(), statusChanged())
		require.Error(t, err)
		assert.Contains(t, err.Error(), TypeApplicationStatusChanged)
	})
}

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestKafkaPublisher_QueueFull(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	p := &KafkaPublisher{
		events: make(chan outbound, 1),
		logger: zap.New(core),
	}

	require.NoError(t, p.PublishJobPublished(context.Background(), jobPublished()))
	err := p.PublishJobPublished(context.Background(), jobPublished())

	assert.ErrorIs(t, err, ErrProducerQueueFull)
	assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
}

func TestKafkaPublisher_SendEvent(t *testing.T) {
	writer := new(MockKafkaWriter)
	var sent []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()
	p := &KafkaPublisher{writer: writer, logger: zaptest.NewLogger(t)}

	payload, err := json.Marshal(statusChanged())
	require.NoError(t, err)
	p.sendEvent(context.Background(), outbound{
		key:      "7",
		envelope: Envelope{Type: TypeApplicationStatusChanged, EventID: "evt-2", Payload: payload},
	})

	require.Len(t, sent, 1)
	assert.Equal(t, []byte("7"), sent[0].Key)
	var env Envelope
	require.NoError(t, json.Unmarshal(sent[0].Value, &env))
	assert.Equal(t, TypeApplicationStatusChanged, env.Type)
	assert.JSONEq(t, string(payload), string(env.Payload))

	t.Run("write error is logged", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		p.logger = zap.New(core)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		p.sendEvent(context.Background(), outbound{key: "7", envelope: Envelope{Type: TypeJobPublished}})

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestKafkaPublisher_CloseFlushes(t *testing.T) {
	writer := new(MockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close").Return(nil)
	p := newKafkaPublisher(writer, zaptest.NewLogger(t), 10)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.PublishJobPublished(context.Background(), jobPublished()))
	}
	p.Close()

	writer.AssertNumberOfCalls(t, "WriteMessages", 3)
	writer.AssertCalled(t, "Close")
}

// fakeReader serves queued messages, then cancels the consumer.
type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
	fetchErrs int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.fetchErrs > 0 {
		r.fetchErrs--
		return kafka.Message{}, errors.New("kafka: broker unreachable")
	}
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func envelopeMessage(t *testing.T, offset int64, eventType string, event any) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	value, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func TestKafkaConsumer_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafka.Message{
			envelopeMessage(t, 1, TypeJobPublished, jobPublished()),
			{Offset: 2, Value: []byte("garbage")},
			envelopeMessage(t, 3, TypeApplicationStatusChanged, statusChanged()),
		},
	}
	// the first handler call fails and is retried
	h := &recordingHandler{failures: 1}
	core, recorded := observer.New(zap.ErrorLevel)
	c := newKafkaConsumer(reader, h, zap.New(core))
	c.initialInterval = time.Millisecond

	require.NoError(t, c.Run(ctx))

	assert.Len(t, h.published, 1)
	assert.Len(t, h.changed, 1)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())
}

func TestKafkaConsumer_GivesUpAfterRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel: cancel,
		msgs:   []kafka.Message{envelopeMessage(t, 5, TypeJobPublished, jobPublished())},
	}
	h := &recordingHandler{failures: 100}
	core, recorded := observer.New(zap.ErrorLevel)
	c := newKafkaConsumer(reader, h, zap.New(core))
	c.initialInterval = time.Millisecond

	require.NoError(t, c.Run(ctx))

	assert.Empty(t, h.published)
	assert.Equal(t, 100-(consumerMaxRetries+1), h.failures)
	assert.Equal(t, []int64{5}, reader.committed)
	assert.Equal(t, 1, recorded.FilterMessage("Failed to handle event").Len())
}

// countingBackOff records how often the consumer asked to wait.
type countingBackOff struct {
	waits, resets int
}

func (b *countingBackOff) NextBackOff() time.Duration {
	b.waits++
	return time.Millisecond
}

func (b *countingBackOff) Reset() { b.resets++ }

func TestKafkaConsumer_WaitsBetweenFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel:    cancel,
		fetchErrs: 3,
		msgs:      []kafka.Message{envelopeMessage(t, 7, TypeJobPublished, jobPublished())},
	}
	h := &recordingHandler{}
	core, recorded := observer.New(zap.ErrorLevel)
	c := newKafkaConsumer(reader, h, zap.New(core))
	bo := &countingBackOff{}
	c.fetchBackOff = bo

	require.NoError(t, c.Run(ctx))

	assert.Equal(t, 3, bo.waits)
	assert.Equal(t, 1, bo.resets)
	assert.Equal(t, 3, recorded.FilterMessage("Failed to fetch message").Len())
	assert.Equal(t, []int64{7}, reader.committed)
	assert.Len(t, h.published, 1)
}

func TestKafkaConsumer_StopsWaitingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{cancel: cancel, fetchErrs: 1}
	c := newKafkaConsumer(reader, &recordingHandler{}, zaptest.NewLogger(t))
	c.fetchBackOff = backoff.NewConstantBackOff(time.Hour)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer kept sleeping after cancel")
	}
}

func TestInlinePublisher(t *testing.T) {
	h := &recordingHandler{}
	p := NewInlinePublisher(h, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.PublishJobPublished(ctx, jobPublished()))
	cancel()
	require.NoError(t, p.PublishApplicationStatusChanged(ctx, statusChanged()))
	p.Wait()

	assert.Len(t, h.published, 1)
	assert.Len(t, h.changed, 1)

	t.Run("handler errors are logged", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		p := NewInlinePublisher(&recordingHandler{failures: 1}, zap.New(core))

		require.NoError(t, p.PublishJobPublished(context.Background(), jobPublished()))
		p.Wait()

		assert.Equal(t, 1, recorded.FilterMessage("event handler failed").Len())
	})
}
