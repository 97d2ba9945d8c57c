package service

import (
	"context"
	"errors"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/sentinel"
	"verireg/pkg/requestcontext"
)

// SubmitIdentity stores the caller's claims under the caller's own account,
// replacing any previous record and resetting it to Unverified.
func (s *Service) SubmitIdentity(ctx context.Context, caller id.AccountID, sub models.Submission) (result *models.Identity, err error) {
	ctx, done := s.startOp(ctx, "SubmitIdentity", accountAttr("registry.account", caller))
	defer func() { done(err) }()

	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := models.NewIdentity(caller, sub.Name, sub.Age, sub.DocumentID, sub.ProofHash, requestcontext.Now(txCtx))
		if err != nil {
			// Convert invariant violations to validation errors for API response
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}
		if err := s.identities.Save(txCtx, rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity")
		}
		if err := s.auditEmitter.emitIdentitySubmitted(txCtx, models.IdentitySubmitted{Account: caller, ProofHash: rec.ProofHash}); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyIdentity marks target Verified when the caller is a verifier and the
// supplied proof matches the submitted one.
//
// Checks run in order: verifier membership, record exists, still
// Unverified, proof matches. The first failing check is returned and
// nothing changes. The store's Execute holds the row lock (mutex or FOR
// UPDATE) across the record checks and the mutation, so concurrent
// verifications of one epoch produce a single success.
func (s *Service) VerifyIdentity(ctx context.Context, caller, target id.AccountID, proof id.ProofHash) (result *models.Identity, err error) {
	ctx, done := s.startOp(ctx, "VerifyIdentity",
		accountAttr("registry.account", target),
		accountAttr("registry.caller", caller),
	)
	defer func() {
		done(err)
		s.incrementVerification(err)
	}()

	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not a verifier")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.verifiers.Contains(txCtx, caller)
		if err != nil {
			return wrapVerifierErr(err, "failed to check verifier")
		}
		if !ok {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not a verifier")
		}

		now := requestcontext.Now(txCtx)
		rec, err := s.identities.Execute(txCtx, target,
			func(rec *models.Identity) error {
				return rec.CanVerify(proof)
			},
			func(rec *models.Identity) {
				rec.ApplyVerification(caller, now)
			},
		)
		if err != nil {
			return wrapIdentityErr(err, "failed to verify identity")
		}
		if err := s.auditEmitter.emitIdentityVerified(txCtx, models.IdentityVerified{Account: target, Verifier: caller, ProofHash: rec.ProofHash}); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetIdentity returns the stored record for account.
func (s *Service) GetIdentity(ctx context.Context, account id.AccountID) (result *models.Identity, err error) {
	ctx, done := s.startOp(ctx, "GetIdentity", accountAttr("registry.account", account))
	defer func() { done(err) }()

	rec, err := s.identities.FindByAccount(ctx, account)
	if err != nil {
		return nil, wrapIdentityErr(err, "failed to load identity")
	}
	return rec, nil
}

// IsVerified reports whether account has a Verified record. An absent
// record and an Unverified record both report false; use GetIdentity to
// tell them apart.
func (s *Service) IsVerified(ctx context.Context, account id.AccountID) (verified bool, err error) {
	ctx, done := s.startOp(ctx, "IsVerified", accountAttr("registry.account", account))
	defer func() { done(err) }()

	rec, err := s.identities.FindByAccount(ctx, account)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return rec.IsVerified(), nil
}

func (s *Service) incrementVerification(err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.IncrementVerification("verified")
		return
	}
	s.metrics.IncrementVerification(outcome(err))
}
