package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"verireg/internal/registry/models"
	"verireg/internal/registry/service"
	"verireg/internal/registry/store/identity"
	"verireg/internal/registry/store/verifier"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/audit"
	"verireg/pkg/platform/audit/publisher"
	"verireg/pkg/platform/sentinel"
	auditmemory "verireg/pkg/platform/audit/store/memory"
	"verireg/pkg/testutil"
)

const (
	owner   = id.AccountID("admin")
	alice   = id.AccountID("alice")
	bob     = id.AccountID("bob")
	mallory = id.AccountID("mallory")
	v1      = id.AccountID("verifier-1")
)

var (
	proofH1 = id.ProofHash{0x01}
	proofH2 = id.ProofHash{0x02}
)

// RegistrySuite drives the registry through its public operations against
// the in-memory stores.
type RegistrySuite struct {
	suite.Suite
	identities *identity.InMemoryStore
	verifiers  *verifier.InMemoryStore
	auditStore *auditmemory.InMemoryStore
	svc        *service.Service
	now        time.Time
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.identities = identity.NewInMemory()
	s.verifiers = verifier.NewInMemory()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.now = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	s.svc = service.New(s.identities, s.verifiers, owner,
		service.WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
}

func (s *RegistrySuite) ctx(caller id.AccountID) context.Context {
	return testutil.CallerContext(caller, s.now)
}

func (s *RegistrySuite) submit(caller id.AccountID, proof id.ProofHash) *models.Identity {
	rec, err := s.svc.SubmitIdentity(s.ctx(caller), caller, models.Submission{
		Name: "Alice", Age: 30, DocumentID: "D1", ProofHash: proof,
	})
	s.Require().NoError(err)
	return rec
}

func (s *RegistrySuite) addVerifier(account id.AccountID) {
	s.Require().NoError(s.svc.AddVerifier(s.ctx(owner), owner, account))
}

func (s *RegistrySuite) actions() []string {
	events, err := s.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func (s *RegistrySuite) verifiedEvents(account id.AccountID) int {
	events, err := s.auditStore.ListByAccount(context.Background(), account)
	s.Require().NoError(err)
	n := 0
	for _, e := range events {
		if e.Action == string(audit.EventIdentityVerified) {
			n++
		}
	}
	return n
}

func (s *RegistrySuite) requireCode(err error, code dErrors.Code, msgAndArgs ...any) {
	s.Require().Error(err, msgAndArgs...)
	s.Equal(code, dErrors.CodeOf(err), msgAndArgs...)
}

func (s *RegistrySuite) TestHappyPath() {
	s.submit(alice, proofH1)
	s.addVerifier(v1)

	rec, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, rec.Status)
	s.Require().NotNil(rec.VerifiedBy)
	s.Equal(v1, *rec.VerifiedBy)

	verified, err := s.svc.IsVerified(context.Background(), alice)
	s.Require().NoError(err)
	s.True(verified)

	s.Equal([]string{
		string(audit.EventIdentitySubmitted),
		string(audit.EventVerifierAdded),
		string(audit.EventIdentityVerified),
	}, s.actions())

	events, err := s.auditStore.ListByAccount(context.Background(), alice)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(v1.String(), events[1].ActorID)
	s.Equal("test-request", events[1].RequestID)
	s.True(events[1].Timestamp.Equal(s.now))
	s.Equal(proofH1.String(), events[0].ProofHash)
	s.Equal(proofH1.String(), events[1].ProofHash)
}

func (s *RegistrySuite) TestProofMismatch() {
	s.submit(alice, proofH1)
	s.addVerifier(v1)

	_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH2)
	s.requireCode(err, dErrors.CodeProofMismatch)

	rec, err := s.svc.GetIdentity(context.Background(), alice)
	s.Require().NoError(err)
	s.Equal(models.StatusUnverified, rec.Status)
	s.Zero(s.verifiedEvents(alice))
}

func (s *RegistrySuite) TestResubmissionResetsVerification() {
	s.submit(alice, proofH1)
	s.addVerifier(v1)
	_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
	s.Require().NoError(err)

	rec := s.submit(alice, proofH2)
	s.Equal(models.StatusUnverified, rec.Status)
	s.Nil(rec.VerifiedBy)

	verified, err := s.svc.IsVerified(context.Background(), alice)
	s.Require().NoError(err)
	s.False(verified)

	s.Run("old proof no longer matches", func() {
		_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
		s.requireCode(err, dErrors.CodeProofMismatch)
	})

	s.Run("new epoch can be verified once more", func() {
		_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH2)
		s.Require().NoError(err)
		s.Equal(2, s.verifiedEvents(alice))
	})
}

func (s *RegistrySuite) TestUnauthorizedVerifier() {
	s.submit(alice, proofH1)

	_, err := s.svc.VerifyIdentity(s.ctx(mallory), mallory, alice, proofH1)
	s.requireCode(err, dErrors.CodeUnauthorized)

	rec, err := s.svc.GetIdentity(context.Background(), alice)
	s.Require().NoError(err)
	s.Equal(models.StatusUnverified, rec.Status)
}

func (s *RegistrySuite) TestNonOwnerCannotManageVerifiers() {
	err := s.svc.AddVerifier(s.ctx(mallory), mallory, mallory)
	s.requireCode(err, dErrors.CodeUnauthorized)

	ok, err := s.svc.IsVerifier(context.Background(), mallory)
	s.Require().NoError(err)
	s.False(ok)

	s.addVerifier(v1)
	err = s.svc.RemoveVerifier(s.ctx(v1), v1, v1)
	s.requireCode(err, dErrors.CodeUnauthorized, "verifiers cannot remove themselves")

	ok, err = s.svc.IsVerifier(context.Background(), v1)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]string{string(audit.EventVerifierAdded)}, s.actions())
}

func (s *RegistrySuite) TestVerifyErrorOrder() {
	s.addVerifier(v1)

	s.Run("membership is checked before existence", func() {
		_, err := s.svc.VerifyIdentity(s.ctx(mallory), mallory, bob, proofH1)
		s.requireCode(err, dErrors.CodeUnauthorized)
	})

	s.Run("missing record", func() {
		_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, bob, proofH1)
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("already verified wins over proof mismatch", func() {
		s.submit(alice, proofH1)
		_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
		s.Require().NoError(err)

		_, err = s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH2)
		s.requireCode(err, dErrors.CodeAlreadyVerified)

		_, err = s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
		s.requireCode(err, dErrors.CodeAlreadyVerified)
		s.Equal(1, s.verifiedEvents(alice))
	})
}

func (s *RegistrySuite) TestVerifierManagementIsIdempotent() {
	s.addVerifier(v1)
	s.addVerifier(v1)

	accounts, err := s.svc.ListVerifiers(context.Background())
	s.Require().NoError(err)
	s.Equal([]id.AccountID{v1}, accounts)

	s.Require().NoError(s.svc.RemoveVerifier(s.ctx(owner), owner, v1))
	s.Require().NoError(s.svc.RemoveVerifier(s.ctx(owner), owner, v1))
	s.Require().NoError(s.svc.RemoveVerifier(s.ctx(owner), owner, bob))

	ok, err := s.svc.IsVerifier(context.Background(), v1)
	s.Require().NoError(err)
	s.False(ok)

	s.Equal([]string{
		string(audit.EventVerifierAdded),
		string(audit.EventVerifierRemoved),
	}, s.actions())
}

func (s *RegistrySuite) TestRemovedVerifierKeepsPastVerifications() {
	s.submit(alice, proofH1)
	s.submit(bob, proofH1)
	s.addVerifier(v1)
	_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, alice, proofH1)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.RemoveVerifier(s.ctx(owner), owner, v1))

	_, err = s.svc.VerifyIdentity(s.ctx(v1), v1, bob, proofH1)
	s.requireCode(err, dErrors.CodeUnauthorized)

	verified, err := s.svc.IsVerified(context.Background(), alice)
	s.Require().NoError(err)
	s.True(verified)
}

func (s *RegistrySuite) TestOwnerMayVerifyOnlyAsVerifier() {
	s.submit(alice, proofH1)

	_, err := s.svc.VerifyIdentity(s.ctx(owner), owner, alice, proofH1)
	s.requireCode(err, dErrors.CodeUnauthorized)

	s.addVerifier(owner)
	_, err = s.svc.VerifyIdentity(s.ctx(owner), owner, alice, proofH1)
	s.Require().NoError(err)
	s.Equal(owner, s.svc.Owner())
}

func (s *RegistrySuite) TestSelfVerification() {
	s.addVerifier(v1)
	s.submit(v1, proofH1)

	_, err := s.svc.VerifyIdentity(s.ctx(v1), v1, v1, proofH1)
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestQueries() {
	s.Run("absent record", func() {
		_, err := s.svc.GetIdentity(context.Background(), bob)
		s.requireCode(err, dErrors.CodeNotFound)

		verified, err := s.svc.IsVerified(context.Background(), bob)
		s.Require().NoError(err)
		s.False(verified)
	})

	s.Run("unverified record", func() {
		s.submit(alice, proofH1)
		verified, err := s.svc.IsVerified(context.Background(), alice)
		s.Require().NoError(err)
		s.False(verified)

		rec, err := s.svc.GetIdentity(context.Background(), alice)
		s.Require().NoError(err)
		s.Equal("Alice", rec.Name)
		s.Equal(uint32(30), rec.Age)
		s.Equal("D1", rec.DocumentID)
		s.Equal(proofH1, rec.ProofHash)
	})

	s.Run("queries are not audited", func() {
		before := len(s.actions())
		_, _ = s.svc.GetIdentity(context.Background(), alice)
		_, _ = s.svc.IsVerifier(context.Background(), alice)
		s.Len(s.actions(), before)
	})
}

func (s *RegistrySuite) TestSubmitValidation() {
	cases := []struct {
		name   string
		caller id.AccountID
		sub    models.Submission
		code   dErrors.Code
	}{
		{"missing caller", "", models.Submission{Name: "A", DocumentID: "D", ProofHash: proofH1}, dErrors.CodeUnauthorized},
		{"blank name", alice, models.Submission{Name: "  ", DocumentID: "D", ProofHash: proofH1}, dErrors.CodeValidation},
		{"missing document", alice, models.Submission{Name: "A", ProofHash: proofH1}, dErrors.CodeValidation},
		{"zero proof", alice, models.Submission{Name: "A", DocumentID: "D"}, dErrors.CodeValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.SubmitIdentity(s.ctx(tc.caller), tc.caller, tc.sub)
			s.requireCode(err, tc.code)
		})
	}

	_, err := s.identities.FindByAccount(context.Background(), alice)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Empty(s.actions())
}

func (s *RegistrySuite) TestZeroAgeIsAccepted() {
	rec, err := s.svc.SubmitIdentity(s.ctx(alice), alice, models.Submission{
		Name: "Alice", Age: 0, DocumentID: "D1", ProofHash: proofH1,
	})
	s.Require().NoError(err)
	s.Equal(uint32(0), rec.Age)
}

func (s *RegistrySuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx(alice))
	cancel()

	_, err := s.svc.SubmitIdentity(ctx, alice, models.Submission{Name: "A", DocumentID: "D", ProofHash: proofH1})
	s.requireCode(err, dErrors.CodeTimeout)

	_, err = s.identities.FindByAccount(context.Background(), alice)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistrySuite) TestEmptyOwnerClosesVerifierManagement() {
	svc := service.New(s.identities, s.verifiers, "")
	err := svc.AddVerifier(context.Background(), "", v1)
	s.requireCode(err, dErrors.CodeUnauthorized)
}
