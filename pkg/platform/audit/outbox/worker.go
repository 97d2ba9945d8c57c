package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Worker polls the outbox and publishes pending rows.
type Worker struct {
	store     Store
	producer  Producer
	topic     string
	tx        TxRunner
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   Metrics
	now       func() time.Time
}

type Option func(*Worker)

func WithTxRunner(tx TxRunner) Option {
	return func(w *Worker) {
		w.tx = tx
	}
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

func NewWorker(store Store, producer Producer, topic string, opts ...Option) *Worker {
	w := &Worker{
		store:     store,
		producer:  producer,
		topic:     topic,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes batches until ctx is cancelled. A full batch is followed
// immediately by another; otherwise the worker waits one interval.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "outbox worker started",
		"topic", w.topic,
		"interval", w.interval,
		"batch_size", w.batchSize,
	)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "outbox worker stopped")
			return nil
		case <-timer.C:
		}

		n, err := w.ProcessBatch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox batch failed", "error", err, "published", n)
		}
		if err == nil && n == w.batchSize {
			timer.Reset(0)
			continue
		}
		timer.Reset(w.interval)
	}
}

// ProcessBatch claims up to batchSize rows, publishes them in creation order
// and marks each one published. It stops at the first producer failure; rows
// published before the failure stay acknowledged.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	var (
		published int
		relayErr  error
	)
	err := w.runInTx(ctx, func(ctx context.Context) error {
		entries, err := w.store.FetchUnpublished(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox entries: %w", err)
		}
		for _, entry := range entries {
			if err := w.producer.Produce(ctx, w.topic, []byte(entry.AggregateID), entry.Payload); err != nil {
				w.incFailed()
				relayErr = fmt.Errorf("publish outbox entry %s: %w", entry.ID, err)
				return nil
			}
			if err := w.store.MarkPublished(ctx, entry.ID, w.now()); err != nil {
				return fmt.Errorf("mark outbox entry %s published: %w", entry.ID, err)
			}
			published++
			w.incPublished()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, relayErr
}

func (w *Worker) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if w.tx == nil {
		return fn(ctx)
	}
	return w.tx.RunInTx(ctx, fn)
}

func (w *Worker) incPublished() {
	if w.metrics != nil {
		w.metrics.IncOutboxPublished()
	}
}

func (w *Worker) incFailed() {
	if w.metrics != nil {
		w.metrics.IncOutboxFailed()
	}
}
