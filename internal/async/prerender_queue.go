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

// Renderer renders every announcement of an order.
type Renderer interface {
	Prerender(ctx context.Context, orderID int64, force bool) (rendered int, err error)
}

type PrerenderQueue struct {
	renderer Renderer
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// senders counts Enqueue calls past the closed check; ch is closed only
	// after they return.
	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup
}

type Option func(*PrerenderQueue)

func WithWorkers(n int) Option {
	return func(q *PrerenderQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *PrerenderQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(q *PrerenderQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewPrerenderQueue(r Renderer, logger *slog.Logger, opts ...Option) *PrerenderQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PrerenderQueue{
		renderer: r,
		logger:   logger,
		workers:  2,
		timeout:  5 * time.Minute,
		ch:       make(chan Job, 256),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PrerenderQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					start := time.Now()
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					n, err := q.renderer.Prerender(ctx, job.OrderID, job.Force)
					cancel()

					if err != nil {
						q.logger.Error("prerender.failed", "worker_id", workerID, "order_id", job.OrderID,
							"trace_id", job.TraceID, "error", err)
					} else {
						q.logger.Info("prerender.ok", "worker_id", workerID, "order_id", job.OrderID,
							"trace_id", job.TraceID, "files", n,
							"elapsed_ms", time.Since(start).Milliseconds(),
							"queued_ms", start.Sub(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full unless ctx ends or Shutdown starts
// first.
func (q *PrerenderQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "order_id", job.OrderID)
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
		q.logger.Debug("queued order for prerender", "order_id", job.OrderID, "force", job.Force)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "order_id", job.OrderID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
}

func (q *PrerenderQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
