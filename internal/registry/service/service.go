// Package service implements the verification registry: identity
// submission, verifier-gated verification and owner-managed verifier set.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	registrymetrics "verireg/internal/registry/metrics"
	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	"verireg/pkg/platform/audit"
)

const tracerName = "verireg/internal/registry"

type IdentityStore interface {
	Save(ctx context.Context, identity *models.Identity) error
	FindByAccount(ctx context.Context, account id.AccountID) (*models.Identity, error)
	Execute(ctx context.Context, account id.AccountID, validate func(*models.Identity) error, mutate func(*models.Identity)) (*models.Identity, error)
}

// VerifierStore holds the verifier set. Add and Remove report whether the
// membership changed.
type VerifierStore interface {
	Add(ctx context.Context, account id.AccountID) (bool, error)
	Remove(ctx context.Context, account id.AccountID) (bool, error)
	Contains(ctx context.Context, account id.AccountID) (bool, error)
	List(ctx context.Context) ([]id.AccountID, error)
}

type OwnerStore interface {
	InitOwner(ctx context.Context, configured id.AccountID) (owner id.AccountID, created bool, err error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// StoreTx provides a transactional boundary for registry mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *registrymetrics.Metrics
	tx             StoreTx
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTx sets the transaction boundary. Defaults to an in-memory lock.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

func newServiceConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	return cfg
}

// Service is the registry state object. The owner is fixed at
// construction and there is no operation that changes it.
type Service struct {
	identities   IdentityStore
	verifiers    VerifierStore
	owner        id.AccountID
	logger       *slog.Logger
	auditEmitter *auditEmitter
	metrics      *registrymetrics.Metrics
	tx           StoreTx
	tracer       trace.Tracer
}

// New constructs the registry. owner should come from ResolveOwner; an
// empty owner leaves verifier management closed to every caller.
func New(identities IdentityStore, verifiers VerifierStore, owner id.AccountID, opts ...Option) *Service {
	cfg := newServiceConfig(opts)
	return &Service{
		identities:   identities,
		verifiers:    verifiers,
		owner:        owner,
		logger:       cfg.logger,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
		tx:           cfg.tx,
		tracer:       otel.Tracer(tracerName),
	}
}

// Owner returns the account that manages the verifier set.
func (s *Service) Owner() id.AccountID {
	return s.owner
}

// ResolveOwner fixes the registry owner at startup. On a fresh store the
// configured account is persisted and an owner_initialized event is recorded
// in the same transaction; afterwards the persisted owner wins and
// configured is ignored.
func ResolveOwner(ctx context.Context, owners OwnerStore, configured id.AccountID, opts ...Option) (id.AccountID, error) {
	cfg := newServiceConfig(opts)
	emitter := newAuditEmitter(cfg.logger, cfg.auditPublisher)

	var owner id.AccountID
	err := cfg.tx.RunInTx(ctx, func(txCtx context.Context) error {
		resolved, created, err := owners.InitOwner(txCtx, configured)
		if err != nil {
			return err
		}
		if created {
			if err := emitter.emitOwnerInitialized(txCtx, models.OwnerInitialized{Owner: resolved}); err != nil {
				return err
			}
		}
		owner = resolved
		return nil
	})
	if err != nil {
		return "", err
	}
	if !configured.IsNil() && configured != owner {
		cfg.logger.WarnContext(ctx, "configured registry owner ignored; registry already has an owner",
			"configured", configured.String(),
			"owner", owner.String(),
		)
	}
	return owner, nil
}
