package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/workerpool"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventQueue    = "queue:tracker:events"
	ProcessingSet = "set:tracker:processing"
)

// EventTask a queued notification
type EventTask struct {
	ID           string           `json:"id"`
	Notification biz.Notification `json:"notification"`
	RetryCount   int              `json:"retry_count"`
}

// Store list and set operations the queue needs; *redis.Client satisfies it
type Store interface {
	LPush(ctx context.Context, key string, values ...interface{}) (int64, error)
	RPop(ctx context.Context, key string) (string, error)
	LLen(ctx context.Context, key string) (int64, error)
	SAdd(ctx context.Context, key string, members ...interface{}) (int64, error)
	SRem(ctx context.Context, key string, members ...interface{}) (int64, error)
	SCard(ctx context.Context, key string) (int64, error)
}

// Router routes one notification; *biz.Router satisfies it
type Router interface {
	Route(ctx context.Context, n biz.Notification) biz.RouteResult
}

// Config worker configuration
type Config struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// BatchSize tasks popped per tick
	BatchSize  int `mapstructure:"batch_size"`
	MaxRetries int `mapstructure:"max_retries"`
}

// DefaultConfig default worker configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval: time.Second,
		BatchSize:    16,
		MaxRetries:   3,
	}
}

// Worker drains the event queue through the router
type Worker struct {
	store  Store
	router Router
	pool   *workerpool.Pool
	config *Config
	logger *logger.Logger

	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWorker creates a worker
func NewWorker(store Store, router Router, pool *workerpool.Pool, cfg *Config, log *logger.Logger) *Worker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if log == nil {
		log = logger.L()
	}
	return &Worker{
		store:  store,
		router: router,
		pool:   pool,
		config: cfg,
		logger: log.Named("queue"),
		stopCh: make(chan struct{}),
	}
}

// Start starts polling
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker already running")
	}

	w.running = true
	w.logger.Info("starting event queue worker",
		zap.Int("pool_size", w.pool.Cap()),
		zap.Duration("poll_interval", w.config.PollInterval),
	)

	w.wg.Add(1)
	go w.pollLoop(ctx)
	return nil
}

// Stop stops polling and waits for in-flight tasks
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.logger.Info("stopping event queue worker")
	close(w.stopCh)
	w.wg.Wait()
	w.pool.Wait()
	w.running = false
	w.logger.Info("event queue worker stopped", zap.Any("stats", w.pool.Stats()))
}

// Running reports whether the worker is polling
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Enqueue pushes a notification and returns its task id
func (w *Worker) Enqueue(ctx context.Context, n biz.Notification) (string, error) {
	return Enqueue(ctx, w.store, n)
}

// Enqueue pushes a notification onto the queue held by store
func Enqueue(ctx context.Context, store Store, n biz.Notification) (string, error) {
	task := &EventTask{
		ID:           uuid.NewString(),
		Notification: n,
	}
	if task.Notification.ID == "" {
		task.Notification.ID = task.ID
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task: %w", err)
	}
	if _, err := store.LPush(ctx, EventQueue, string(taskJSON)); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.InfoContext(ctx, "event enqueued",
		zap.String("task_id", task.ID),
		zap.String("filepath", n.Filepath()),
		zap.String("event_type", n.EventType),
	)
	return task.ID, nil
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			w.logger.Info("context cancelled, worker stopping")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain pops up to BatchSize tasks and hands them to the pool
func (w *Worker) drain(ctx context.Context) {
	for i := 0; i < w.config.BatchSize; i++ {
		taskJSON, err := w.store.RPop(ctx, EventQueue)
		if err != nil || taskJSON == "" {
			return
		}

		var task EventTask
		if err := json.Unmarshal([]byte(taskJSON), &task); err != nil {
			w.logger.Error("failed to unmarshal task", zap.Error(err))
			continue
		}

		if err := w.pool.Submit(func() error { return w.processTask(ctx, &task) }); err != nil {
			w.logger.Error("failed to submit task, re-enqueueing", zap.String("task_id", task.ID), zap.Error(err))
			_, _ = w.store.LPush(ctx, EventQueue, taskJSON)
			return
		}
	}
}

// processTask routes one task and re-enqueues it on retryable failures
func (w *Worker) processTask(ctx context.Context, task *EventTask) error {
	ctx = logger.WithEventID(ctx, task.ID)
	log := w.logger.WithContext(ctx).With(
		zap.String("filepath", task.Notification.Filepath()),
		zap.Int("retry_count", task.RetryCount),
	)

	if _, err := w.store.SAdd(ctx, ProcessingSet, task.ID); err != nil {
		log.Error("failed to mark task as processing", zap.Error(err))
	}

	result := w.router.Route(ctx, task.Notification)

	_, _ = w.store.SRem(ctx, ProcessingSet, task.ID)

	if result.Err == nil {
		log.Info("event processed", zap.String("status", string(result.Status)), zap.String("outcome", result.Outcome))
		return nil
	}

	log.Error("failed to process event", zap.Error(result.Err))
	if !biz.IsRetryable(result.Err) {
		return result.Err
	}

	if task.RetryCount < w.config.MaxRetries {
		task.RetryCount++
		taskJSON, _ := json.Marshal(task)
		if _, err := w.store.LPush(ctx, EventQueue, string(taskJSON)); err != nil {
			log.Error("failed to re-enqueue task", zap.Error(err))
		} else {
			log.Info("event re-enqueued for retry", zap.Int("retry_count", task.RetryCount))
		}
	} else {
		log.Error("event processing failed after max retries")
	}
	return result.Err
}

// GetQueueSize pending task count
func (w *Worker) GetQueueSize(ctx context.Context) (int64, error) {
	return w.store.LLen(ctx, EventQueue)
}

// GetProcessingCount in-flight task count
func (w *Worker) GetProcessingCount(ctx context.Context) (int64, error) {
	return w.store.SCard(ctx, ProcessingSet)
}
