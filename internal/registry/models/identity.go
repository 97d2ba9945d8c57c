package models

import (
	"strings"
	"time"

	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
)

// Status is the verification state of an identity record.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
)

func (s Status) IsValid() bool {
	return s == StatusUnverified || s == StatusVerified
}

// Identity is the registry record for one account.
//
// Invariants:
//   - Account is the key and never changes
//   - Status moves Unverified -> Verified only through ApplyVerification
//   - ProofHash is fixed for the lifetime of a submission; a resubmission
//     replaces the whole record and starts a new epoch
//   - VerifiedBy and VerifiedAt are set exactly when Status is Verified
type Identity struct {
	Account     id.AccountID  `json:"account"`
	Name        string        `json:"name"`
	Age         uint32        `json:"age"`
	DocumentID  string        `json:"document_id"`
	ProofHash   id.ProofHash  `json:"proof_hash"`
	Status      Status        `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	VerifiedBy  *id.AccountID `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time    `json:"verified_at,omitempty"`
}

// NewIdentity builds a fresh Unverified record. Claim fields are opaque;
// only their presence is checked. The all-zero proof hash is reserved to mean
// "no proof supplied" (it is what an omitted or empty field decodes to), so
// it is rejected like a missing name.
func NewIdentity(account id.AccountID, name string, age uint32, documentID string, proof id.ProofHash, now time.Time) (*Identity, error) {
	if account.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is required")
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document_id is required")
	}
	if proof.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "proof_hash is required")
	}
	return &Identity{
		Account:     account,
		Name:        name,
		Age:         age,
		DocumentID:  documentID,
		ProofHash:   proof,
		Status:      StatusUnverified,
		SubmittedAt: now,
	}, nil
}

func (i *Identity) IsVerified() bool {
	return i.Status == StatusVerified
}

// CanVerify checks the record-level preconditions of a verification in
// order: an already verified record wins over a proof mismatch.
// Use with ApplyVerification in Execute callbacks.
func (i *Identity) CanVerify(proof id.ProofHash) error {
	if i.IsVerified() {
		return dErrors.New(dErrors.CodeAlreadyVerified, "identity is already verified")
	}
	if i.ProofHash != proof {
		return dErrors.New(dErrors.CodeProofMismatch, "proof hash does not match")
	}
	return nil
}

// ApplyVerification flips the record to Verified and records who did it.
// Call CanVerify first.
func (i *Identity) ApplyVerification(verifier id.AccountID, now time.Time) {
	i.Status = StatusVerified
	v := verifier
	at := now
	i.VerifiedBy = &v
	i.VerifiedAt = &at
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.VerifiedBy != nil {
		v := *i.VerifiedBy
		c.VerifiedBy = &v
	}
	if i.VerifiedAt != nil {
		at := *i.VerifiedAt
		c.VerifiedAt = &at
	}
	return &c
}
