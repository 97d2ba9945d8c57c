// Package consumer decodes audit events relayed from the outbox and routes
// them by category.
package consumer

import (
	"context"
	"log/slog"

	"verireg/internal/platform/kafka/consumer"
	audit "verireg/pkg/platform/audit"
	auditpostgres "verireg/pkg/platform/audit/store/postgres"
)

// EventHandler processes one decoded audit event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event audit.Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event audit.Event) error

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event audit.Event) error {
	return f(ctx, event)
}

// Router dispatches events to category-specific handlers.
type Router struct {
	handlers map[audit.EventCategory]EventHandler
	fallback EventHandler
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback EventHandler) *Router {
	return &Router{
		handlers: make(map[audit.EventCategory]EventHandler),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler for a category.
func (r *Router) Register(category audit.EventCategory, handler EventHandler) {
	r.handlers[category] = handler
}

// Handle decodes the record and routes it. Malformed records are logged and
// skipped so they do not block the partition.
func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	event, err := auditpostgres.DecodePayload(msg.Value)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to decode audit payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	handler, ok := r.handlers[event.Category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.HandleEvent(ctx, event)
		}
		r.logger.DebugContext(ctx, "no handler for audit category, skipping",
			"category", event.Category,
			"action", event.Action,
		)
		return nil
	}
	return handler.HandleEvent(ctx, event)
}
