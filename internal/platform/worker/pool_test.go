package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/livescore/internal/platform/logging"
)

func TestPool_RunsJobsAndDrainsOnClose(t *testing.T) {
	pool, err := NewPool(4, time.Second, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}

	var done atomic.Int32
	for i := 0; i < 4; i++ {
		if err := pool.Submit("count", func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Submit error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if got := done.Load(); got != 4 {
		t.Fatalf("expected 4 jobs to finish, got %d", got)
	}
}

func TestPool_SubmitIsNonBlockingWhenFull(t *testing.T) {
	pool, err := NewPool(1, time.Second, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Submit("block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	<-started

	err = pool.Submit("overflow", func(context.Context) error { return nil })
	if !errors.Is(err, ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull, got %v", err)
	}

	close(release)
	_ = pool.Close(context.Background())
}

func TestPool_JobReceivesDeadline(t *testing.T) {
	pool, err := NewPool(1, 50*time.Millisecond, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}

	got := make(chan bool, 1)
	_ = pool.Submit("deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		got <- ok
		return nil
	})

	if !<-got {
		t.Fatalf("expected job context to carry a deadline")
	}
	_ = pool.Close(context.Background())
}

func TestPool_NilPoolIsNoop(t *testing.T) {
	var pool *Pool
	if err := pool.Submit("noop", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected nil pool submit to be a no-op, got %v", err)
	}
	if err := pool.Close(context.Background()); err != nil {
		t.Fatalf("expected nil pool close to be a no-op, got %v", err)
	}
}
