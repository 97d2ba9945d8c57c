package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"verireg/internal/registry/models"
	"verireg/internal/registry/service"
	"verireg/internal/registry/service/mocks"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/audit"
	"verireg/pkg/platform/sentinel"
)

// ServiceFailureSuite covers dependency failures with mocked ports.
type ServiceFailureSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	identities *mocks.MockIdentityStore
	verifiers  *mocks.MockVerifierStore
	publisher  *mocks.MockAuditPublisher
	svc        *service.Service
}

func TestServiceFailureSuite(t *testing.T) {
	suite.Run(t, new(ServiceFailureSuite))
}

func (s *ServiceFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.identities = mocks.NewMockIdentityStore(s.ctrl)
	s.verifiers = mocks.NewMockVerifierStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = service.New(s.identities, s.verifiers, owner, service.WithAuditPublisher(s.publisher))
}

func (s *ServiceFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceFailureSuite) TestVerifyStopsAtFirstFailure() {
	s.Run("non-verifier never touches the identity store", func() {
		s.verifiers.EXPECT().Contains(gomock.Any(), mallory).Return(false, nil)

		_, err := s.svc.VerifyIdentity(context.Background(), mallory, alice, proofH1)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("verifier lookup failure is internal", func() {
		s.verifiers.EXPECT().Contains(gomock.Any(), v1).Return(false, sentinel.ErrUnavailable)

		_, err := s.svc.VerifyIdentity(context.Background(), v1, alice, proofH1)
		s.True(dErrors.Is(err, dErrors.CodeInternal))
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("store not-found maps to NotFound", func() {
		s.verifiers.EXPECT().Contains(gomock.Any(), v1).Return(true, nil)
		s.identities.EXPECT().Execute(gomock.Any(), alice, gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("identity alice: %w", sentinel.ErrNotFound))

		_, err := s.svc.VerifyIdentity(context.Background(), v1, alice, proofH1)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("model errors pass through unchanged", func() {
		s.verifiers.EXPECT().Contains(gomock.Any(), v1).Return(true, nil)
		s.identities.EXPECT().Execute(gomock.Any(), alice, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.AccountID, validate func(*models.Identity) error, _ func(*models.Identity)) (*models.Identity, error) {
				rec := &models.Identity{Account: alice, ProofHash: proofH2, Status: models.StatusUnverified}
				return nil, validate(rec)
			})

		_, err := s.svc.VerifyIdentity(context.Background(), v1, alice, proofH1)
		s.True(dErrors.Is(err, dErrors.CodeProofMismatch))
	})
}

func (s *ServiceFailureSuite) TestAuditFailureFailsOperation() {
	emitErr := errors.New("outbox insert failed")

	s.Run("verify", func() {
		s.verifiers.EXPECT().Contains(gomock.Any(), v1).Return(true, nil)
		s.identities.EXPECT().Execute(gomock.Any(), alice, gomock.Any(), gomock.Any()).
			Return(&models.Identity{Account: alice, Status: models.StatusVerified}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(emitErr)

		_, err := s.svc.VerifyIdentity(context.Background(), v1, alice, proofH1)
		s.True(dErrors.Is(err, dErrors.CodeInternal))
		s.ErrorIs(err, emitErr)
	})

	s.Run("submit", func() {
		s.identities.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(emitErr)

		_, err := s.svc.SubmitIdentity(context.Background(), alice, models.Submission{Name: "A", DocumentID: "D", ProofHash: proofH1})
		s.ErrorIs(err, emitErr)
	})
}

func (s *ServiceFailureSuite) TestSubmitSaveFailure() {
	s.identities.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

	_, err := s.svc.SubmitIdentity(context.Background(), alice, models.Submission{Name: "A", DocumentID: "D", ProofHash: proofH1})
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}

func (s *ServiceFailureSuite) TestSubmitEventShape() {
	s.identities.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventIdentitySubmitted), ev.Action)
			s.Equal(audit.CategoryCompliance, ev.Category)
			s.Equal(alice, ev.Account)
			s.Equal(alice.String(), ev.ActorID)
			s.Equal(proofH1.String(), ev.ProofHash)
			return nil
		})

	_, err := s.svc.SubmitIdentity(context.Background(), alice, models.Submission{Name: "A", DocumentID: "D", ProofHash: proofH1})
	s.Require().NoError(err)
}

func (s *ServiceFailureSuite) TestUnchangedVerifierSetEmitsNothing() {
	s.verifiers.EXPECT().Add(gomock.Any(), v1).Return(false, nil)
	s.verifiers.EXPECT().Remove(gomock.Any(), bob).Return(false, nil)

	s.Require().NoError(s.svc.AddVerifier(context.Background(), owner, v1))
	s.Require().NoError(s.svc.RemoveVerifier(context.Background(), owner, bob))
}

func (s *ServiceFailureSuite) TestQueryFailures() {
	s.identities.EXPECT().FindByAccount(gomock.Any(), alice).Return(nil, sentinel.ErrUnavailable)
	_, err := s.svc.IsVerified(context.Background(), alice)
	s.True(dErrors.Is(err, dErrors.CodeInternal))

	s.verifiers.EXPECT().List(gomock.Any()).Return(nil, sentinel.ErrUnavailable)
	_, err = s.svc.ListVerifiers(context.Background())
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}

func (s *ServiceFailureSuite) TestCustomTxBoundary() {
	tx := mocks.NewMockStoreTx(s.ctrl)
	svc := service.New(s.identities, s.verifiers, owner, service.WithTx(tx))

	tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	s.verifiers.EXPECT().Add(gomock.Any(), v1).Return(true, nil)

	s.Require().NoError(svc.AddVerifier(context.Background(), owner, v1))
}

type ResolveOwnerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	owners    *mocks.MockOwnerStore
	publisher *mocks.MockAuditPublisher
}

func TestResolveOwnerSuite(t *testing.T) {
	suite.Run(t, new(ResolveOwnerSuite))
}

func (s *ResolveOwnerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.owners = mocks.NewMockOwnerStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
}

func (s *ResolveOwnerSuite) TestFreshRegistryRecordsOwner() {
	s.owners.EXPECT().InitOwner(gomock.Any(), owner).Return(owner, true, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventOwnerInitialized), ev.Action)
			s.Equal(audit.CategorySecurity, ev.Category)
			s.Equal(owner, ev.Account)
			return nil
		})

	got, err := service.ResolveOwner(context.Background(), s.owners, owner, service.WithAuditPublisher(s.publisher))
	s.Require().NoError(err)
	s.Equal(owner, got)
}

func (s *ResolveOwnerSuite) TestExistingOwnerWins() {
	s.owners.EXPECT().InitOwner(gomock.Any(), mallory).Return(owner, false, nil)

	got, err := service.ResolveOwner(context.Background(), s.owners, mallory, service.WithAuditPublisher(s.publisher))
	s.Require().NoError(err)
	s.Equal(owner, got)
}

func (s *ResolveOwnerSuite) TestStoreFailure() {
	s.owners.EXPECT().InitOwner(gomock.Any(), id.AccountID("")).
		Return(id.AccountID(""), false, dErrors.New(dErrors.CodeInvalidInput, "no owner"))

	_, err := service.ResolveOwner(context.Background(), s.owners, "")
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}
