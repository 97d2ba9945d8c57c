package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	jwttoken "verireg/internal/jwt_token"
	"verireg/internal/jwt_token/revocation"
	"verireg/internal/platform/config"
	"verireg/internal/platform/metrics"
	"verireg/internal/platform/postgres"
	registrymetrics "verireg/internal/registry/metrics"
	"verireg/internal/registry/service"
	"verireg/internal/registry/store/identity"
	"verireg/internal/registry/store/owner"
	"verireg/internal/registry/store/verifier"
	id "verireg/pkg/domain"
	"verireg/pkg/platform/audit"
	"verireg/pkg/platform/audit/outbox"
	"verireg/pkg/platform/audit/publisher"
	auditmemory "verireg/pkg/platform/audit/store/memory"
	auditpostgres "verireg/pkg/platform/audit/store/postgres"
)

type tokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// app is the assembled registry with its collaborators.
type app struct {
	registry     *service.Service
	jwt          *jwttoken.JWTService
	trl          tokenRevocationList
	auditLog     audit.Store
	outboxWorker *outbox.Worker
}

type registryStores struct {
	identities service.IdentityStore
	verifiers  service.VerifierStore
	owners     service.OwnerStore
	auditLog   audit.Store
	tx         service.StoreTx
}

// buildStores picks store implementations from the configured backends.
// With a database every store, the audit outbox and the transaction
// boundary are PostgreSQL; VERIFIER_BACKEND=redis moves only the verifier
// set to Redis.
func buildStores(cfg config.Server, in *infra) (*registryStores, error) {
	stores := &registryStores{}
	if in.db != nil {
		stores.identities = identity.NewPostgres(in.db)
		stores.owners = owner.NewPostgres(in.db)
		stores.auditLog = auditpostgres.New(in.db)
		stores.tx = postgres.NewTxRunner(in.db).WithTimeout(cfg.Database.TxTimeout)
	} else {
		stores.identities = identity.NewInMemory()
		stores.owners = owner.NewInMemory()
		stores.auditLog = auditmemory.NewInMemoryStore()
	}

	switch cfg.EffectiveVerifierBackend() {
	case config.BackendPostgres:
		if in.db == nil {
			return nil, fmt.Errorf("verifier backend postgres requires a database")
		}
		stores.verifiers = verifier.NewPostgres(in.db)
	case config.BackendRedis:
		if in.redis == nil {
			return nil, fmt.Errorf("verifier backend redis requires a redis connection")
		}
		stores.verifiers = verifier.NewRedis(in.redis.Client, "")
	default:
		stores.verifiers = verifier.NewInMemory()
	}
	return stores, nil
}

func buildApp(ctx context.Context, cfg config.Server, in *infra, reg prometheus.Registerer, platformMetrics *metrics.Metrics, log *slog.Logger) (*app, error) {
	stores, err := buildStores(cfg, in)
	if err != nil {
		return nil, err
	}

	auditPublisher := publisher.NewPublisher(stores.auditLog)
	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(registrymetrics.New(reg)),
	}
	if stores.tx != nil {
		opts = append(opts, service.WithTx(stores.tx))
	}

	var configured id.AccountID
	if cfg.Owner != "" {
		configured, err = id.ParseAccountID(cfg.Owner)
		if err != nil {
			return nil, fmt.Errorf("REGISTRY_OWNER: %w", err)
		}
	}
	registryOwner, err := service.ResolveOwner(ctx, stores.owners, configured, opts...)
	if err != nil {
		return nil, fmt.Errorf("resolve registry owner: %w", err)
	}

	a := &app{
		registry: service.New(stores.identities, stores.verifiers, registryOwner, opts...),
		jwt:      jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience),
		auditLog: stores.auditLog,
	}
	if in.redis != nil {
		a.trl = revocation.NewRedisTRL(in.redis.Client)
	} else {
		a.trl = revocation.NewInMemoryTRL()
	}

	if in.producer != nil && in.db != nil {
		a.outboxWorker = outbox.NewWorker(outbox.NewPostgresStore(in.db), in.producer, cfg.Kafka.Topic,
			outbox.WithTxRunner(postgres.NewTxRunner(in.db).WithTimeout(cfg.Database.TxTimeout)),
			outbox.WithInterval(cfg.Outbox.PollInterval),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithLogger(log),
			outbox.WithMetrics(platformMetrics),
		)
	}
	return a, nil
}
