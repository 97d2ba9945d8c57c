// Package outbox relays audit events written to the outbox table to Kafka.
//
// Rows are claimed with FOR UPDATE SKIP LOCKED so several workers can run
// against the same database. A row is marked published only after the
// producer acknowledged it, giving at-least-once delivery; consumers
// deduplicate on the event id carried in the payload.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=outbox.go -destination=mocks/mocks.go -package=mocks

// Entry is one unpublished outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Store reads and acknowledges outbox rows.
type Store interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Producer delivers a record to the broker and blocks until acknowledged.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// TxRunner scopes a batch claim to one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics observes relay outcomes.
type Metrics interface {
	IncOutboxPublished()
	IncOutboxFailed()
}
