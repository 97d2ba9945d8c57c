package admin

import (
	"time"

	"verireg/pkg/platform/audit"
)

// AuditEventResponse is the HTTP response DTO for one audit event.
type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Account   string    `json:"account"`
	ActorID   string    `json:"actor_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ProofHash string    `json:"proof_hash,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditListResponse wraps the audit trail of one account.
type AuditListResponse struct {
	Events []*AuditEventResponse `json:"events"`
	Total  int                   `json:"total"`
}

func FromEvents(events []audit.Event) *AuditListResponse {
	out := make([]*AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, &AuditEventResponse{
			ID:        e.ID.String(),
			Category:  string(e.Category),
			Action:    e.Action,
			Account:   e.Account.String(),
			ActorID:   e.ActorID,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			ProofHash: e.ProofHash,
			Timestamp: e.Timestamp,
		})
	}
	return &AuditListResponse{Events: out, Total: len(out)}
}
