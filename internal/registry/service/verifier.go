package service

import (
	"context"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
)

// AddVerifier grants verification rights to account. Only the owner may
// call it. Adding an existing verifier succeeds without emitting an event.
func (s *Service) AddVerifier(ctx context.Context, caller, account id.AccountID) (err error) {
	ctx, done := s.startOp(ctx, "AddVerifier",
		accountAttr("registry.account", account),
		accountAttr("registry.caller", caller),
	)
	defer func() { done(err) }()

	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if account.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "account is required")
	}

	changed := false
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		added, err := s.verifiers.Add(txCtx, account)
		if err != nil {
			return wrapVerifierErr(err, "failed to add verifier")
		}
		if !added {
			return nil
		}
		changed = true
		return s.auditEmitter.emitVerifierAdded(txCtx, models.VerifierAdded{Account: account, Owner: caller})
	})
	if err != nil {
		return err
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementVerifierAdded()
	}
	return nil
}

// RemoveVerifier revokes verification rights from account. Only the owner
// may call it. Removing a non-verifier succeeds without emitting an event.
// Records already verified by account stay Verified.
func (s *Service) RemoveVerifier(ctx context.Context, caller, account id.AccountID) (err error) {
	ctx, done := s.startOp(ctx, "RemoveVerifier",
		accountAttr("registry.account", account),
		accountAttr("registry.caller", caller),
	)
	defer func() { done(err) }()

	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if account.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "account is required")
	}

	changed := false
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		removed, err := s.verifiers.Remove(txCtx, account)
		if err != nil {
			return wrapVerifierErr(err, "failed to remove verifier")
		}
		if !removed {
			return nil
		}
		changed = true
		return s.auditEmitter.emitVerifierRemoved(txCtx, models.VerifierRemoved{Account: account, Owner: caller})
	})
	if err != nil {
		return err
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementVerifierRemoved()
	}
	return nil
}

func (s *Service) IsVerifier(ctx context.Context, account id.AccountID) (ok bool, err error) {
	ctx, done := s.startOp(ctx, "IsVerifier", accountAttr("registry.account", account))
	defer func() { done(err) }()

	ok, err = s.verifiers.Contains(ctx, account)
	if err != nil {
		return false, wrapVerifierErr(err, "failed to check verifier")
	}
	return ok, nil
}

// ListVerifiers returns the verifier set in ascending order.
func (s *Service) ListVerifiers(ctx context.Context) (accounts []id.AccountID, err error) {
	ctx, done := s.startOp(ctx, "ListVerifiers")
	defer func() { done(err) }()

	accounts, err = s.verifiers.List(ctx)
	if err != nil {
		return nil, wrapVerifierErr(err, "failed to list verifiers")
	}
	return accounts, nil
}

func (s *Service) requireOwner(caller id.AccountID) error {
	if caller.IsNil() || s.owner.IsNil() || caller != s.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry owner can manage verifiers")
	}
	return nil
}
