package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Submit when the dispatcher cannot take
// more work; the caller still owes the requester an answer through
// its own channel.
var ErrQueueFull = errors.New("notify queue full")

// ErrShuttingDown is returned by Submit once Shutdown has been
// called. Callers handle it like ErrQueueFull: answer the requester
// synchronously instead of deferring.
var ErrShuttingDown = errors.New("notify dispatcher shutting down")

// Task is one deferred unit of work. Run does the work; OnError is
// the task's error channel, invoked with the failure so it can be
// surfaced to the requester (there is no synchronous channel left by
// the time a task runs).
type Task struct {
	ID      string
	Run     func(ctx context.Context) error
	OnError func(ctx context.Context, err error)
}

// Dispatcher executes deferred interaction work on a small worker
// pool. Tasks are fire-and-forget with no ordering between them;
// per-pair ordering comes from the response row lock, not from here.
// Accepting and draining are two distinct phases: Submit keeps
// working until Shutdown is called, and only then do the workers
// drain and exit, so a task accepted while requests were still being
// served always runs.
type Dispatcher struct {
	queue    chan Task
	stop     chan struct{}
	stopOnce sync.Once
	workers  int
	logger   *slog.Logger
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

func NewDispatcher(logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	return &Dispatcher{
		queue:   make(chan Task, cfg.QueueSize),
		stop:    make(chan struct{}),
		workers: cfg.Workers,
		logger:  logger,
	}
}

// Submit enqueues a task without blocking the request path.
func (d *Dispatcher) Submit(t Task) error {
	if t.Run == nil {
		return errors.New("task has no Run func")
	}
	select {
	case <-d.stop:
		return ErrShuttingDown
	default:
	}
	select {
	case d.queue <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops the dispatcher accepting new tasks and tells the
// workers to drain. Call it only after the request source has
// stopped, an accepted task must never race the final drain.
func (d *Dispatcher) Shutdown() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Run consumes tasks until Shutdown, then drains whatever was already
// accepted. Blocks until all workers have stopped.
func (d *Dispatcher) Run() {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-d.stop:
					d.drain()
					return
				case t := <-d.queue:
					d.execute(t)
				}
			}
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) drain() {
	for {
		select {
		case t := <-d.queue:
			d.execute(t)
		default:
			return
		}
	}
}

func (d *Dispatcher) execute(t Task) {
	// Tasks run to completion regardless of server shutdown, with no
	// deadline of their own; the requester's only feedback channel
	// lives inside the task.
	ctx := context.Background()

	start := time.Now()
	err := t.Run(ctx)
	if err == nil {
		d.logger.Info("deferred task done", "task_id", t.ID, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	d.logger.Error("deferred task failed", "task_id", t.ID, "err", err)
	if t.OnError != nil {
		t.OnError(ctx, err)
	}
}
