package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// BatchQueue hands jobs to a single worker, so batches are audited one at a
// time in submission order.
type BatchQueue struct {
	handle  Handler
	logger  *slog.Logger
	timeout time.Duration

	ch   chan Job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	// senders counts Enqueue calls past the closed check; ch is closed only
	// once they have all returned.
	senders sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type Option func(*BatchQueue)

func WithQueueSize(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *BatchQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewBatchQueue(handle Handler, logger *slog.Logger, opts ...Option) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		handle:  handle,
		logger:  logger,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 16),
		quit:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Debug("worker started")

			for job := range q.ch {
				ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
				err := q.handle(ctx, job)
				cancel()

				if err != nil {
					q.logger.Error("batch failed", "job_id", job.ID, "documents", len(job.Paths), "error", err)
				} else {
					q.logger.Info("batch processed", "job_id", job.ID, "documents", len(job.Paths))
				}
			}

			q.logger.Debug("worker stopped")
		}()
	})
}

// Enqueue blocks while the queue is full, until ctx is done or Shutdown is
// called.
func (q *BatchQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued batch", "job_id", job.ID, "documents", len(job.Paths))
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
	select {
	case q.ch <- job:
		q.logger.Info("queued batch", "job_id", job.ID, "documents", len(job.Paths))
		return nil
	case <-q.quit:
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, releases blocked Enqueue calls and waits for
// queued jobs to finish, or for ctx to be done.
func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.senders.Wait()
		close(q.ch)
		q.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
