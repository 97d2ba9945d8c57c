package handler

import (
	"strings"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
)

const (
	maxNameLength       = 256
	maxDocumentIDLength = 128
)

// SubmitIdentityRequest is the HTTP request body for POST /identities.
type SubmitIdentityRequest struct {
	Name       string  `json:"name"`
	Age        *uint32 `json:"age"`
	DocumentID string  `json:"document_id"`
	ProofHash  string  `json:"proof_hash"`

	parsedProof id.ProofHash
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 256 characters")
	}
	if len(r.DocumentID) > maxDocumentIDLength {
		return dErrors.New(dErrors.CodeValidation, "document_id must be at most 128 characters")
	}

	r.Name = strings.TrimSpace(r.Name)
	r.DocumentID = strings.TrimSpace(r.DocumentID)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Age == nil {
		return dErrors.New(dErrors.CodeValidation, "age is required")
	}
	if r.DocumentID == "" {
		return dErrors.New(dErrors.CodeValidation, "document_id is required")
	}

	proof, err := id.ParseProofHash(r.ProofHash)
	if err != nil {
		return err
	}
	r.parsedProof = proof
	return nil
}

// ToSubmission converts the validated request to the domain command.
func (r *SubmitIdentityRequest) ToSubmission() models.Submission {
	return models.Submission{
		Name:       r.Name,
		Age:        *r.Age,
		DocumentID: r.DocumentID,
		ProofHash:  r.parsedProof,
	}
}

// VerifyIdentityRequest is the HTTP request body for
// POST /identities/{account}/verify.
type VerifyIdentityRequest struct {
	ProofHash string `json:"proof_hash"`

	parsedProof id.ProofHash
}

func (r *VerifyIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	proof, err := id.ParseProofHash(r.ProofHash)
	if err != nil {
		return err
	}
	r.parsedProof = proof
	return nil
}

// ParsedProof returns the validated proof hash.
func (r *VerifyIdentityRequest) ParsedProof() id.ProofHash {
	return r.parsedProof
}
