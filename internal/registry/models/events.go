package models

import id "verireg/pkg/domain"

// IdentitySubmitted is emitted for every accepted submission, including
// resubmissions that reset a verified record.
type IdentitySubmitted struct {
	Account   id.AccountID
	ProofHash id.ProofHash
}

// IdentityVerified is emitted at most once per submission epoch.
type IdentityVerified struct {
	Account   id.AccountID
	Verifier  id.AccountID
	ProofHash id.ProofHash
}

// VerifierAdded is emitted only when the set actually changed.
type VerifierAdded struct {
	Account id.AccountID
	Owner   id.AccountID
}

// VerifierRemoved is emitted only when the set actually changed.
type VerifierRemoved struct {
	Account id.AccountID
	Owner   id.AccountID
}

// OwnerInitialized is emitted once, when a fresh registry persists its owner.
type OwnerInitialized struct {
	Owner id.AccountID
}
