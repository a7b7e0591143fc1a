package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/livescore/internal/platform/logging"
)

var ErrPoolFull = errors.New("background pool is full")

// Pool runs fire-and-forget jobs on a bounded ants pool. Submit never blocks;
// jobs that do not fit are dropped and reported through ErrPoolFull.
type Pool struct {
	pool    *ants.Pool
	logger  *logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewPool(size int, jobTimeout time.Duration, logger *logging.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &Pool{logger: logger, timeout: jobTimeout}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			logger.Error("background job panicked", "panic", fmt.Sprint(v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	p.pool = pool
	return p, nil
}

// Submit schedules job with a detached context so it outlives the request
// that produced it. name is used for logging only.
func (p *Pool) Submit(name string, job func(ctx context.Context) error) error {
	if p == nil || job == nil {
		return nil
	}

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()

		ctx := context.Background()
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		if jobErr := job(ctx); jobErr != nil {
			p.logger.Warn("background job failed", "job", name, "error", jobErr)
		}
	})
	if err != nil {
		p.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			return ErrPoolFull
		}
		return fmt.Errorf("submit %s: %w", name, err)
	}
	return nil
}

func (p *Pool) Running() int {
	if p == nil {
		return 0
	}
	return p.pool.Running()
}

// Close waits for in-flight jobs until ctx is done, then releases the pool.
func (p *Pool) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	p.pool.Release()
	return err
}
