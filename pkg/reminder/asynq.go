package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	// TaskTypeSend is the asynq task type carrying a Job payload.
	TaskTypeSend = "reminder:send"

	// DefaultQueue is the asynq queue reminders are enqueued on.
	DefaultQueue = "reminders"
)

// NewTask wraps job into an asynq task.
func NewTask(job Job) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reminder %s: %w", job.Key(), err)
	}
	return asynq.NewTask(TaskTypeSend, payload), nil
}

// AsynqScheduler keeps jobs as scheduled asynq tasks in Redis. The task id
// is the reminder key, so a key holds at most one scheduled task.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	now       func() time.Time
}

// NewAsynqScheduler creates a durable scheduler on the given Redis connection.
func NewAsynqScheduler(opt asynq.RedisConnOpt) *AsynqScheduler {
	return &AsynqScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     DefaultQueue,
		now:       time.Now,
	}
}

// Arm enqueues job to be processed at fireAt, replacing a task already
// scheduled under key.
func (s *AsynqScheduler) Arm(ctx context.Context, key string, fireAt time.Time, job Job) error {
	if !fireAt.After(s.now()) {
		return ErrInPast
	}

	task, err := NewTask(job)
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(key),
		asynq.Queue(s.queue),
		asynq.MaxRetry(0),
	}

	_, err = s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logrus.Infof("replacing scheduled reminder task %s", key)
		if err := s.Cancel(ctx, key); err != nil {
			return err
		}
		_, err = s.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder task %s: %w", key, err)
	}

	return nil
}

// Cancel deletes the task scheduled under key. A missing task or queue is not an error.
func (s *AsynqScheduler) Cancel(ctx context.Context, key string) error {
	err := s.inspector.DeleteTask(s.queue, key)
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("failed to delete reminder task %s: %w", key, err)
}

// Close releases the client and inspector connections.
func (s *AsynqScheduler) Close() error {
	return errors.Join(s.client.Close(), s.inspector.Close())
}

// NewWorker builds the asynq server and mux that deliver fired reminders.
func NewWorker(opt asynq.RedisConnOpt, concurrency int, handler Handler) (*asynq.Server, *asynq.ServeMux) {
	if concurrency <= 0 {
		concurrency = 1
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			DefaultQueue: 1,
		},
		Logger: logrus.StandardLogger(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSend, handleTask(handler))

	return srv, mux
}

func handleTask(handler Handler) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var job Job
		if err := json.Unmarshal(task.Payload(), &job); err != nil {
			logrus.Errorf("invalid reminder payload: %v", err)
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		handler(ctx, job)
		return nil
	}
}
