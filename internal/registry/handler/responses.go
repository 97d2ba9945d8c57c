package handler

import (
	"time"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
)

// IdentityResponse is the HTTP representation of a registry record.
type IdentityResponse struct {
	Account     string     `json:"account"`
	Name        string     `json:"name"`
	Age         uint32     `json:"age"`
	DocumentID  string     `json:"document_id"`
	ProofHash   string     `json:"proof_hash"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	VerifiedBy  string     `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

func FromIdentity(rec *models.Identity) *IdentityResponse {
	resp := &IdentityResponse{
		Account:     rec.Account.String(),
		Name:        rec.Name,
		Age:         rec.Age,
		DocumentID:  rec.DocumentID,
		ProofHash:   rec.ProofHash.String(),
		Status:      string(rec.Status),
		SubmittedAt: rec.SubmittedAt,
		VerifiedAt:  rec.VerifiedAt,
	}
	if rec.VerifiedBy != nil {
		resp.VerifiedBy = rec.VerifiedBy.String()
	}
	return resp
}

type VerifiedResponse struct {
	Account  string `json:"account"`
	Verified bool   `json:"verified"`
}

type VerifierStatusResponse struct {
	Account  string `json:"account"`
	Verifier bool   `json:"verifier"`
}

type VerifiersResponse struct {
	Verifiers []string `json:"verifiers"`
	Total     int      `json:"total"`
}

func FromVerifiers(accounts []id.AccountID) *VerifiersResponse {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.String())
	}
	return &VerifiersResponse{Verifiers: out, Total: len(out)}
}

type OwnerResponse struct {
	Owner string `json:"owner"`
}
