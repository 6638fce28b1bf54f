package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchQueueRunsJobsInOrder(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	q := NewBatchQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, job.ID)
		return nil
	}, nil)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{ID: id, Paths: []string{id + ".pdf"}}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestBatchQueueHandlerErrorDoesNotStopWorker(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	q := NewBatchQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		calls++
		mu.Unlock()
		if job.ID == "bad" {
			return errors.New("boom")
		}
		return nil
	}, nil)

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "bad"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "good"}))
	q.Shutdown(context.Background())
	assert.Equal(t, 2, calls)
}

func TestBatchQueueRejectsAfterShutdown(t *testing.T) {
	q := NewBatchQueue(func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{ID: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestBatchQueueHandlerGetsDeadline(t *testing.T) {
	var deadline bool
	q := NewBatchQueue(func(ctx context.Context, _ Job) error {
		_, deadline = ctx.Deadline()
		return nil
	}, nil, WithProcessTimeout(time.Minute))
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "x"}))
	q.Shutdown(context.Background())
	assert.True(t, deadline)
}

func TestBatchQueueEnqueueHonoursContextWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewBatchQueue(func(context.Context, Job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, nil, WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "buffered"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{ID: "blocked"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	q.Shutdown(context.Background())
}

func TestBatchQueueShutdownReleasesBlockedEnqueue(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewBatchQueue(func(context.Context, Job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, nil, WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "buffered"}))

	blocked := make(chan error, 1)
	go func() { blocked <- q.Enqueue(context.Background(), Job{ID: "blocked"}) }()
	// give the sender time to reach the full channel
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		q.Shutdown(context.Background())
	}()

	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Enqueue was not released by Shutdown")
	}

	// Enqueue no longer holds the lock while waiting, so late callers fail fast.
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{ID: "late"}), ErrQueueClosed)

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not drain")
	}
}
