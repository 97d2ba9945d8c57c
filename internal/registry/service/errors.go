package service

import (
	"errors"

	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/sentinel"
)

// wrapIdentityErr translates identity store errors into domain errors.
// Domain errors from model checks pass through unchanged.
func wrapIdentityErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func wrapVerifierErr(err error, action string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// outcome is the metrics label for an operation result.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}
