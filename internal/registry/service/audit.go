package service

import (
	"context"
	"log/slog"

	"verireg/internal/registry/models"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/audit"
	"verireg/pkg/requestcontext"
)

// auditEmitter logs registry events and hands them to the publisher. A
// publisher failure aborts the surrounding transaction.
type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emitIdentitySubmitted(ctx context.Context, ev models.IdentitySubmitted) error {
	return e.emit(ctx, audit.EventIdentitySubmitted, audit.Event{
		Account:   ev.Account,
		ActorID:   ev.Account.String(),
		ProofHash: ev.ProofHash.String(),
	})
}

func (e *auditEmitter) emitIdentityVerified(ctx context.Context, ev models.IdentityVerified) error {
	return e.emit(ctx, audit.EventIdentityVerified, audit.Event{
		Account:   ev.Account,
		ActorID:   ev.Verifier.String(),
		ProofHash: ev.ProofHash.String(),
	})
}

func (e *auditEmitter) emitVerifierAdded(ctx context.Context, ev models.VerifierAdded) error {
	return e.emit(ctx, audit.EventVerifierAdded, audit.Event{
		Account: ev.Account,
		ActorID: ev.Owner.String(),
	})
}

func (e *auditEmitter) emitVerifierRemoved(ctx context.Context, ev models.VerifierRemoved) error {
	return e.emit(ctx, audit.EventVerifierRemoved, audit.Event{
		Account: ev.Account,
		ActorID: ev.Owner.String(),
	})
}

func (e *auditEmitter) emitOwnerInitialized(ctx context.Context, ev models.OwnerInitialized) error {
	return e.emit(ctx, audit.EventOwnerInitialized, audit.Event{
		Account: ev.Owner,
		Reason:  "registry created",
	})
}

func (e *auditEmitter) emit(ctx context.Context, action audit.AuditEvent, event audit.Event) error {
	event.Action = string(action)
	event.Category = action.Category()
	event.Timestamp = requestcontext.Now(ctx)
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	e.logger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"account", event.Account.String(),
		"actor_id", event.ActorID,
		"request_id", event.RequestID,
		"proof_hash", event.ProofHash,
	)
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
