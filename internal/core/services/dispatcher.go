package services

import (
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/logger"
)

// DefaultDispatcherPoolSize is the worker count used when none is configured.
const DefaultDispatcherPoolSize = 8

// Dispatcher runs fire-and-forget work (cache and analytics writes) off the
// request path. Submission never blocks: when every worker is busy the task
// is dropped and logged.
type Dispatcher struct {
	pool *ants.Pool
	log  *zap.Logger
	wg   sync.WaitGroup
}

// NewDispatcher creates a dispatcher with size workers.
func NewDispatcher(size int, log *zap.Logger) (*Dispatcher, error) {
	if size < 1 {
		size = DefaultDispatcherPoolSize
	}
	log = logger.OrNop(log)

	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			log.Error("background task panicked", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{pool: pool, log: log}, nil
}

// Submit schedules task. It returns false when the task was dropped.
func (d *Dispatcher) Submit(name string, task func()) bool {
	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()
		task()
	})
	if err != nil {
		d.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			d.log.Warn("background pool full, dropping task", zap.String("task", name))
		} else {
			d.log.Warn("background task rejected", zap.String("task", name), zap.Error(err))
		}
		return false
	}
	return true
}

// Drain waits up to timeout for submitted tasks to finish.
// It reports whether every task completed.
func (d *Dispatcher) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Running returns the number of busy workers.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Release stops the pool. Tasks still queued are abandoned.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
