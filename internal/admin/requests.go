package admin

import (
	"strings"
	"time"

	dErrors "verireg/pkg/domain-errors"
)

const maxRevocationTTL = 30 * 24 * time.Hour

// RevokeTokenRequest is the HTTP request body for POST /admin/revocations.
type RevokeTokenRequest struct {
	JTI        string `json:"jti"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// Validate implements httputil.Validatable.
func (r *RevokeTokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.JTI = strings.TrimSpace(r.JTI)
	if r.JTI == "" {
		return dErrors.New(dErrors.CodeValidation, "jti is required")
	}
	if r.TTLSeconds <= 0 {
		return dErrors.New(dErrors.CodeValidation, "ttl_seconds must be positive")
	}
	if r.TTLSeconds > int64(maxRevocationTTL/time.Second) {
		return dErrors.New(dErrors.CodeValidation, "ttl_seconds must be at most 30 days")
	}
	return nil
}

func (r *RevokeTokenRequest) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}
