package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var current, peak int64
	var tasks []*Task
	for i := 0; i < 8; i++ {
		key := string(rune('a' + i))
		tasks = append(tasks, pool.Submit(context.Background(), key, func(ctx context.Context) (any, error) {
			n := atomic.AddInt64(&current, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return nil, nil
		}))
	}
	for _, task := range tasks {
		if _, err := task.Wait(context.Background()); err != nil {
			t.Fatalf("Task failed: %v", err)
		}
	}

	if p := atomic.LoadInt64(&peak); p > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, saw %d", p)
	}
}

func TestPoolSerializesSameKey(t *testing.T) {
	pool := NewPool(4)

	var mu sync.Mutex
	var order []int
	var tasks []*Task
	for i := 0; i < 6; i++ {
		i := i
		tasks = append(tasks, pool.Submit(context.Background(), "model-1", func(ctx context.Context) (any, error) {
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}
	for _, task := range tasks {
		if _, err := task.Wait(context.Background()); err != nil {
			t.Fatalf("Task failed: %v", err)
		}
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("Tasks under one key ran out of order: %v", order)
		}
	}
}

func TestPoolTaskCancel(t *testing.T) {
	pool := NewPool(1)

	started := make(chan struct{})
	task := pool.Submit(context.Background(), "m", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	<-started
	task.Cancel()

	_, err := task.Wait(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPoolQueuedTaskCancelledBeforeRun(t *testing.T) {
	pool := NewPool(1)

	release := make(chan struct{})
	blocker := pool.Submit(context.Background(), "m", func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})

	ran := false
	queued := pool.Submit(context.Background(), "m", func(ctx context.Context) (any, error) {
		ran = true
		return nil, nil
	})
	queued.Cancel()

	if _, err := queued.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if ran {
		t.Error("Cancelled task should not have run")
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("Blocker failed: %v", err)
	}
}

func TestPoolResultValue(t *testing.T) {
	pool := NewPool(2)
	task := pool.Submit(context.Background(), "m", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	v, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Task failed: %v", err)
	}
	if v.(int) != 42 {
		t.Errorf("Expected 42, got %v", v)
	}
}

func TestPoolForgetsFinishedKeys(t *testing.T) {
	pool := NewPool(2)

	for i := 0; i < 4; i++ {
		key := string(rune('a' + i))
		task := pool.Submit(context.Background(), key, func(ctx context.Context) (any, error) {
			return nil, nil
		})
		if _, err := task.Wait(context.Background()); err != nil {
			t.Fatalf("Task failed: %v", err)
		}
	}

	pool.mu.Lock()
	n := len(pool.tails)
	pool.mu.Unlock()
	if n != 0 {
		t.Errorf("Expected no leftover key entries, got %d", n)
	}
}
