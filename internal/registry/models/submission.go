package models

import id "verireg/pkg/domain"

// Submission carries the claim fields a caller submits for their own
// account. The registry stores them verbatim.
type Submission struct {
	Name       string
	Age        uint32
	DocumentID string
	ProofHash  id.ProofHash
}
