package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sharebite/internal/logger"
)

var ErrEmailQueueFull = errors.New("email queue is full")

type emailJob struct {
	id      string
	to      string
	toName  string
	subject string
	body    string
	retries int
}

// EmailQueue hands messages to background workers so that a request never
// waits on the email provider. Failed sends are retried with a quadratic
// backoff and dropped after maxRetries.
type EmailQueue struct {
	next       sender
	jobs       chan emailJob
	workers    int
	maxRetries int
	backoff    func(attempt int) time.Duration

	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewEmailQueue(next sender, workers, queueSize, maxRetries int) *EmailQueue {
	if workers < 1 {
		workers = 1
	}
	return &EmailQueue{
		next:       next,
		jobs:       make(chan emailJob, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

// Start launches the workers. They stop when ctx is cancelled or after Close
// has drained the queue.
func (q *EmailQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *EmailQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	log := logger.WithComponent("email_queue").With("worker", id)
	log.Debug("Email worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Email worker stopping", "reason", ctx.Err())
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, job)
		}
	}
}

func (q *EmailQueue) process(ctx context.Context, job emailJob) {
	for {
		err := q.next.send(ctx, job.to, job.toName, job.subject, job.body)
		if err == nil {
			return
		}
		if job.retries >= q.maxRetries {
			logger.Error("Email dropped after retries", "email_id", job.id, "to", job.to, "retries", job.retries, "error", err)
			return
		}
		job.retries++
		wait := q.backoff(job.retries)
		logger.Warn("Retrying email", "email_id", job.id, "attempt", job.retries, "in", wait, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// send enqueues the message; it only fails when the queue is full or
// closed.
func (q *EmailQueue) send(ctx context.Context, to, toName, subject, body string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrEmailQueueFull
	}
	select {
	case q.jobs <- emailJob{id: uuid.NewString(), to: to, toName: toName, subject: subject, body: body}:
		return nil
	default:
		logger.Warn("Email queue full, dropping message", "to", to, "subject", subject)
		return ErrEmailQueueFull
	}
}

// Close stops accepting messages and waits for the workers to drain what is
// already queued.
func (q *EmailQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

// NewQueuedEmailService is NewEmailService with delivery moved onto an
// EmailQueue. The caller starts and closes the queue.
func NewQueuedEmailService(apiKey, fromEmail, fromName string, workers, queueSize, maxRetries int) (EmailService, *EmailQueue) {
	direct := NewEmailService(apiKey, fromEmail, fromName).(*emailService)
	queue := NewEmailQueue(direct.sender, workers, queueSize, maxRetries)
	return &emailService{sender: queue}, queue
}
