// Package worker runs background computations for the viewer: a pool
// bounded by a weighted semaphore, with tasks that share a key
// executing in submission order. Interactive recomputes submit here so
// a slow tessellation never blocks the caller.
package worker

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many tasks run at once. Tasks submitted under the
// same key run one after another; tasks under different keys only
// compete for workers.
type Pool struct {
	sem *semaphore.Weighted

	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewPool creates a pool running at most workers tasks concurrently.
// A non-positive count uses the number of CPUs.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		sem:   semaphore.NewWeighted(int64(workers)),
		tails: make(map[string]chan struct{}),
	}
}

// Task is a handle to a submitted computation
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	value any
	err   error
}

// Submit queues fn under the given key. The function receives a
// context derived from ctx that is also cancelled by Task.Cancel.
func (p *Pool) Submit(ctx context.Context, key string, fn func(context.Context) (any, error)) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{done: make(chan struct{}), cancel: cancel}

	p.mu.Lock()
	prev := p.tails[key]
	p.tails[key] = t.done
	p.mu.Unlock()

	go func() {
		defer func() {
			// A finished tail no longer orders anything; drop its
			// entry before done closes
			p.mu.Lock()
			if ch, ok := p.tails[key]; ok && ch == t.done {
				delete(p.tails, key)
			}
			p.mu.Unlock()
			cancel()
			close(t.done)
		}()

		// Wait for the previous task under this key
		if prev != nil {
			select {
			case <-prev:
			case <-taskCtx.Done():
				t.err = taskCtx.Err()
				return
			}
		}

		if err := p.sem.Acquire(taskCtx, 1); err != nil {
			t.err = err
			return
		}
		defer p.sem.Release(1)

		t.value, t.err = fn(taskCtx)
	}()
	return t
}

// Cancel asks the task to stop. The task still completes its done
// channel, with a context error if it had not finished its work.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the task has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}
