package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config worker pool configuration
type Config struct {
	Workers int `mapstructure:"workers"`
	// MaxBlockingTasks caps submitters waiting for a free worker; 0 means unlimited
	MaxBlockingTasks int `mapstructure:"max_blocking_tasks"`
	// ExpiryDuration recycles idle workers
	ExpiryDuration time.Duration `mapstructure:"expiry_duration"`
}

// DefaultConfig default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:        8,
		ExpiryDuration: time.Minute,
	}
}

// Statistics task counters
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
	Panicked  int64
	Running   int64
}

// Pool runs tasks on a bounded ants pool and tracks their outcome
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
	wg     sync.WaitGroup
	closed atomic.Bool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	panicked  atomic.Int64
	running   atomic.Int64
}

// New creates a worker pool
func New(cfg *Config, logger *zap.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be > 0, got %d", cfg.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{logger: logger}

	opts := []ants.Option{
		ants.WithPanicHandler(func(r interface{}) {
			p.panicked.Add(1)
			logger.Error("worker panic", zap.Any("error", r), zap.Stack("stacktrace"))
		}),
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
	}
	if cfg.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(cfg.ExpiryDuration))
	}

	antsPool, err := ants.NewPool(cfg.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool
	return p, nil
}

// Submit schedules task, blocking while every worker is busy.
// A non-nil error returned by task is counted as a failure.
func (p *Pool) Submit(task func() error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		p.running.Add(1)
		defer p.running.Add(-1)

		if err := task(); err != nil {
			p.failed.Add(1)
			return
		}
		p.completed.Add(1)
	})
	if err != nil {
		p.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

// Wait blocks until every submitted task has returned
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Tune resizes the pool
func (p *Pool) Tune(size int) {
	p.logger.Info("resizing worker pool", zap.Int("from", p.pool.Cap()), zap.Int("to", size))
	p.pool.Tune(size)
}

func (p *Pool) Cap() int { return p.pool.Cap() }
func (p *Pool) Running() int { return p.pool.Running() }

// Stats returns a snapshot of the counters
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Panicked:  p.panicked.Load(),
		Running:   p.running.Load(),
	}
}

// Shutdown refuses new tasks, drains in-flight ones and releases workers
func (p *Pool) Shutdown() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.wg.Wait()
	p.pool.Release()
}
