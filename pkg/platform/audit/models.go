package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "verireg/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance.
	// Examples: identity submitted, identity verified.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers changes to who may act on the registry.
	// Examples: verifier added, verifier removed.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// Account is the registry record or verifier the event is about.
	Account id.AccountID
	Action  string
	// ActorID is the authenticated caller that caused the event.
	ActorID   string
	Reason    string
	RequestID string
	// ProofHash is the 0x-prefixed commitment a submission or verification
	// was made against.
	ProofHash string
}

type AuditEvent string

const (
	EventIdentitySubmitted AuditEvent = "identity_submitted"
	EventIdentityVerified  AuditEvent = "identity_verified"
	EventVerifierAdded     AuditEvent = "verifier_added"
	EventVerifierRemoved   AuditEvent = "verifier_removed"
	EventOwnerInitialized  AuditEvent = "owner_initialized"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentitySubmitted: CategoryCompliance,
	EventIdentityVerified:  CategoryCompliance,

	EventVerifierAdded:    CategorySecurity,
	EventVerifierRemoved:  CategorySecurity,
	EventOwnerInitialized: CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, account id.AccountID) ([]Event, error)
}
