// Package scheduler runs periodic work with an explicit lifetime.
//
//	task := scheduler.NewTask("route", 15*time.Second, refresh)
//	task.Start(ctx)
//	defer task.Stop()
//	task.Trigger() // run now, outside the interval
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Func func(ctx context.Context)

type Task struct {
	name     string
	interval time.Duration
	fn       Func

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

func NewTask(name string, interval time.Duration, fn Func) *Task {
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		trigger:  make(chan struct{}, 1),
	}
}

// Start runs fn once immediately and then on every tick or Trigger until ctx
// is cancelled or Stop is called. Starting a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
	slog.Debug("scheduler: task started", "task", t.name, "interval", t.interval)
}

// Stop cancels the task and waits for the running call to return.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Debug("scheduler: task stopped", "task", t.name)
}

// Trigger asks for an extra run. Triggers coalesce while one is pending.
func (t *Task) Trigger() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Done is closed when the loop exits, including when the parent context ends.
func (t *Task) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.done
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.run(ctx)
		case <-t.trigger:
			t.run(ctx)
		}
	}
}

func (t *Task) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler: task panicked", "task", t.name, "panic", r)
		}
	}()
	t.fn(ctx)
}
