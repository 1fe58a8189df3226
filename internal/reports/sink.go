package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/storage"
)

// Receipt describes where a report ended up.
type Receipt struct {
	Report domain.Report
	// Queued is set when the report was kept locally because the server
	// could not take it.
	Queued bool
}

// Sink stores a validated report somewhere.
type Sink interface {
	Deliver(ctx context.Context, r domain.Report) (Receipt, error)
}

// SubmitAPI is the part of the API client the remote sink uses.
type SubmitAPI interface {
	SubmitReport(ctx context.Context, report *domain.Report) (*domain.Report, error)
}

// RemoteSink posts reports to the server.
type RemoteSink struct {
	api SubmitAPI
}

func NewRemoteSink(api SubmitAPI) *RemoteSink {
	return &RemoteSink{api: api}
}

func (s *RemoteSink) Deliver(ctx context.Context, r domain.Report) (Receipt, error) {
	stored, err := s.api.SubmitReport(ctx, &r)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Report: *stored}, nil
}

// Queue keeps reports in durable client storage under the platformReports
// key until they can be delivered.
type Queue struct {
	store storage.Store
	mu    sync.Mutex
}

func NewQueue(store storage.Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) Deliver(ctx context.Context, r domain.Report) (Receipt, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queued, err := q.load(ctx)
	if err != nil {
		return Receipt{}, err
	}
	for _, existing := range queued {
		if existing.ID == r.ID {
			return Receipt{Report: existing, Queued: true}, nil
		}
	}
	if err := q.save(ctx, append(queued, r)); err != nil {
		return Receipt{}, err
	}
	return Receipt{Report: r, Queued: true}, nil
}

// List returns the queued reports, oldest first.
func (q *Queue) List(ctx context.Context) ([]domain.Report, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// remove drops the reports with the given ids.
func (q *Queue) remove(ctx context.Context, ids map[string]bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	queued, err := q.load(ctx)
	if err != nil {
		return err
	}
	kept := queued[:0]
	for _, r := range queued {
		if !ids[r.ID] {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return q.store.Delete(ctx, storage.KeyPlatformReports)
	}
	return q.save(ctx, kept)
}

func (q *Queue) load(ctx context.Context) ([]domain.Report, error) {
	raw, err := q.store.Get(ctx, storage.KeyPlatformReports)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report queue: %w", err)
	}
	var reports []domain.Report
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		return nil, fmt.Errorf("decode report queue: %w", err)
	}
	return reports, nil
}

func (q *Queue) save(ctx context.Context, reports []domain.Report) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encode report queue: %w", err)
	}
	if err := q.store.Set(ctx, storage.KeyPlatformReports, string(data)); err != nil {
		return fmt.Errorf("write report queue: %w", err)
	}
	return nil
}

// Tiered delivers to a primary sink and falls back to the local queue. A
// report is only lost if both fail.
type Tiered struct {
	primary Sink
	queue   *Queue
	log     *slog.Logger
}

func NewTiered(primary Sink, queue *Queue) *Tiered {
	return &Tiered{primary: primary, queue: queue, log: logger.WithComponent("reports")}
}

func (t *Tiered) Deliver(ctx context.Context, r domain.Report) (Receipt, error) {
	receipt, err := t.primary.Deliver(ctx, r)
	if err == nil {
		return receipt, nil
	}
	t.log.Warn("Report submission failed, storing locally", "report_id", r.ID, "error", err)

	receipt, qerr := t.queue.Deliver(ctx, r)
	if qerr != nil {
		return Receipt{}, domain.NewInternalError(errors.Join(err, qerr))
	}
	return receipt, nil
}

// Flush replays queued reports to the primary sink. Delivered reports leave
// the queue; the rest stay for the next attempt.
func (t *Tiered) Flush(ctx context.Context) (delivered int, err error) {
	queued, err := t.queue.List(ctx)
	if err != nil {
		return 0, domain.NewInternalError(err)
	}

	done := make(map[string]bool)
	var failures []error
	for _, r := range queued {
		if _, err := t.primary.Deliver(ctx, r); err != nil {
			failures = append(failures, err)
			continue
		}
		done[r.ID] = true
	}
	if len(done) > 0 {
		if err := t.queue.remove(ctx, done); err != nil {
			return 0, domain.NewInternalError(err)
		}
	}
	if len(failures) > 0 {
		t.log.Warn("Some queued reports could not be delivered", "delivered", len(done), "remaining", len(failures))
		return len(done), failures[0]
	}
	return len(done), nil
}

// Queue exposes the fallback queue.
func (t *Tiered) Queue() *Queue {
	return t.queue
}
