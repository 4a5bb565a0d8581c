package outbox

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Handler consumes a decoded intent. A handler runs at most once per
// in-process delivery attempt, but a crash after it runs and before the
// event is marked processed replays the event, so its writes must be
// replay-safe (deterministic ids keyed on the event).
type Handler interface {
	Handle(ctx context.Context, evt Event, intent Intent) error
}

type HandlerFunc func(ctx context.Context, evt Event, intent Intent) error

func (f HandlerFunc) Handle(ctx context.Context, evt Event, intent Intent) error {
	return f(ctx, evt, intent)
}

type Repository interface {
	FetchPending(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id string, attempts int) error
	MarkFailed(ctx context.Context, id string, attempts int) error
}

// Relay polls pending events and fans them out to the registered handlers
// with bounded concurrency. A failing event is retried with exponential
// backoff up to maxAttempts, then parked as failed; failures never reach
// the lifecycle caller that produced the event.
type Relay struct {
	repo         Repository
	handlers     []Handler
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	workers      int
}

func NewRelay(
	repo Repository,
	handlers []Handler,
	logger *zap.Logger,
	pollInterval time.Duration,
	batchSize int,
	maxAttempts int,
	workers int,
) *Relay {
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if workers <= 0 {
		workers = 4
	}
	return &Relay{
		repo:         repo,
		handlers:     handlers,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		workers:      workers,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Drain(ctx); err != nil {
				r.logger.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

// Drain processes every currently-pending event once.
func (r *Relay) Drain(ctx context.Context) error {
	evts, err := r.repo.FetchPending(ctx, r.batchSize)
	if err != nil {
		return err
	}
	if len(evts) == 0 {
		return nil
	}

	p := pool.New().WithMaxGoroutines(r.workers)
	for _, evt := range evts {
		evt := evt
		p.Go(func() {
			r.process(ctx, evt)
		})
	}
	p.Wait()
	return nil
}

func (r *Relay) process(ctx context.Context, evt Event) {
	var intent Intent
	if err := json.Unmarshal(evt.Payload, &intent); err != nil {
		r.logger.Error("undecodable outbox payload", zap.String("eventId", evt.ID), zap.Error(err))
		if err := r.repo.MarkFailed(ctx, evt.ID, evt.Attempts); err != nil {
			r.logger.Error("marking outbox event failed", zap.String("eventId", evt.ID), zap.Error(err))
		}
		return
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	attempts := evt.Attempts
	completed := make([]bool, len(r.handlers))
	for attempts < r.maxAttempts {
		attempts++
		if err := r.dispatch(ctx, evt, intent, completed); err == nil {
			if err := r.repo.MarkProcessed(ctx, evt.ID, attempts); err != nil {
				r.logger.Error("marking outbox event processed", zap.String("eventId", evt.ID), zap.Error(err))
			}
			return
		} else {
			r.logger.Warn("outbox handler failed",
				zap.String("eventId", evt.ID),
				zap.String("eventType", evt.Type),
				zap.Int("attempt", attempts),
				zap.Error(err))
		}

		sleep := bo.NextBackOff()
		if sleep == backoff.Stop {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}

	r.logger.Error("outbox event exhausted retries",
		zap.String("eventId", evt.ID),
		zap.String("eventType", evt.Type),
		zap.Int("attempts", attempts))
	if err := r.repo.MarkFailed(ctx, evt.ID, attempts); err != nil {
		r.logger.Error("marking outbox event failed", zap.String("eventId", evt.ID), zap.Error(err))
	}
}

// dispatch runs the handlers in order, skipping any that already
// succeeded on an earlier attempt for this event.
func (r *Relay) dispatch(ctx context.Context, evt Event, intent Intent, completed []bool) error {
	for i, h := range r.handlers {
		if completed[i] {
			continue
		}
		if err := h.Handle(ctx, evt, intent); err != nil {
			return err
		}
		completed[i] = true
	}
	return nil
}
