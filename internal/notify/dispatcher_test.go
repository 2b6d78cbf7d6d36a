package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitAndRun(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 2, QueueSize: 8})

	var ran atomic.Int32
	done := make(chan struct{})
	err := d.Submit(Task{
		ID: "t1",
		Run: func(ctx context.Context) error {
			ran.Add(1)
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	finished := make(chan struct{})
	go func() {
		d.Run()
		close(finished)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
	d.Shutdown()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	if ran.Load() != 1 {
		t.Fatalf("task ran %d times", ran.Load())
	}
}

func TestOnErrorInvokedWithTaskError(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 1, QueueSize: 1})

	want := errors.New("edit failed")
	var got error
	var mu sync.Mutex
	d.Submit(Task{
		ID:  "t1",
		Run: func(ctx context.Context) error { return want },
		OnError: func(ctx context.Context, err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		},
	})

	d.Shutdown()
	d.Run() // drains synchronously

	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(got, want) {
		t.Fatalf("OnError got %v, want %v", got, want)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 1, QueueSize: 1})

	noop := func(ctx context.Context) error { return nil }
	if err := d.Submit(Task{ID: "t1", Run: noop}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if err := d.Submit(Task{ID: "t2", Run: noop}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second submit = %v, want ErrQueueFull", err)
	}
}

func TestSubmitRejectsNilRun(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{})
	if err := d.Submit(Task{ID: "t1"}); err == nil {
		t.Fatal("expected error for task without Run")
	}
}

func TestSubmitAfterShutdownIsRefused(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 1, QueueSize: 4})

	var ran atomic.Int32
	err := d.Submit(Task{
		ID:  "t1",
		Run: func(ctx context.Context) error { ran.Add(1); return nil },
	})
	if err != nil {
		t.Fatalf("submit before shutdown failed: %v", err)
	}

	finished := make(chan struct{})
	go func() {
		d.Run()
		close(finished)
	}()
	d.Shutdown()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	// The task accepted before shutdown ran; anything offered after
	// the workers exited is refused rather than silently parked.
	if ran.Load() != 1 {
		t.Fatalf("accepted task ran %d times, want 1", ran.Load())
	}
	err = d.Submit(Task{
		ID:  "t2",
		Run: func(ctx context.Context) error { return nil },
	})
	if !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("Submit after shutdown = %v, want ErrShuttingDown", err)
	}
	d.Shutdown() // second call is a no-op
}

func TestTaskContextCarriesNoDeadline(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 1, QueueSize: 1})

	var hasDeadline atomic.Bool
	d.Submit(Task{
		ID: "t1",
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hasDeadline.Store(ok)
			return nil
		},
	})

	d.Shutdown()
	d.Run()

	if hasDeadline.Load() {
		t.Fatal("deferred task context must not carry a deadline")
	}
}

func TestDrainRunsAcceptedTasksAfterShutdown(t *testing.T) {
	d := NewDispatcher(testLogger(), DispatcherConfig{Workers: 2, QueueSize: 16})

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		err := d.Submit(Task{
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	d.Shutdown()
	d.Run()

	if ran.Load() != 10 {
		t.Fatalf("drain ran %d of 10 accepted tasks", ran.Load())
	}
}
