// Package publisher emits audit events into an audit.Store.
//
// Emit writes through to the store and returns its error, so a publisher
// backed by the outbox store joins the caller's transaction.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	audit "verireg/pkg/platform/audit"
)

type Publisher struct {
	store audit.Store
	now   func() time.Time
}

type Option func(*Publisher)

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and records an event. Category is derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	return p.store.Append(ctx, event)
}
