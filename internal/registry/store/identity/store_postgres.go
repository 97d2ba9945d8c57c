package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	"verireg/pkg/platform/sentinel"
	txcontext "verireg/pkg/platform/tx"
)

// PostgresStore persists identity records in the identities table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectIdentity = `
	SELECT account, name, age, document_id, proof_hash, status, submitted_at, verified_by, verified_at
	FROM identities
	WHERE account = $1
`

// Save upserts the full record. A resubmission clears the verification
// columns.
func (s *PostgresStore) Save(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (account, name, age, document_id, proof_hash, status, submitted_at, verified_by, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			document_id = EXCLUDED.document_id,
			proof_hash = EXCLUDED.proof_hash,
			status = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at
	`
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, identityArgs(identity)...)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAccount(ctx context.Context, account id.AccountID) (*models.Identity, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, selectIdentity, account.String())
	return scanIdentity(row, account)
}

// Execute locks the row with FOR UPDATE, validates, mutates and writes it
// back in one transaction. It joins the transaction in ctx when present.
func (s *PostgresStore) Execute(ctx context.Context, account id.AccountID, validate func(*models.Identity) error, mutate func(*models.Identity)) (*models.Identity, error) {
	if tx, ok := txcontext.From(ctx); ok {
		return s.execute(ctx, tx, account, validate, mutate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rec, err := s.execute(ctx, tx, account, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) execute(ctx context.Context, tx *sql.Tx, account id.AccountID, validate func(*models.Identity) error, mutate func(*models.Identity)) (*models.Identity, error) {
	rec, err := scanIdentity(tx.QueryRowContext(ctx, selectIdentity+" FOR UPDATE", account.String()), account)
	if err != nil {
		return nil, err
	}
	if err := validate(rec); err != nil {
		return nil, err
	}
	mutate(rec)

	query := `
		UPDATE identities
		SET status = $2, verified_by = $3, verified_at = $4
		WHERE account = $1
	`
	args := identityArgs(rec)
	if _, err := tx.ExecContext(ctx, query, args[0], args[5], args[7], args[8]); err != nil {
		return nil, fmt.Errorf("update identity: %w", err)
	}
	return rec, nil
}

func identityArgs(i *models.Identity) []any {
	var (
		verifiedBy sql.NullString
		verifiedAt sql.NullTime
	)
	if i.VerifiedBy != nil {
		verifiedBy = sql.NullString{String: i.VerifiedBy.String(), Valid: true}
	}
	if i.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *i.VerifiedAt, Valid: true}
	}
	return []any{
		i.Account.String(),
		i.Name,
		int64(i.Age),
		i.DocumentID,
		i.ProofHash.Bytes(),
		string(i.Status),
		i.SubmittedAt,
		verifiedBy,
		verifiedAt,
	}
}

func scanIdentity(row *sql.Row, account id.AccountID) (*models.Identity, error) {
	var (
		rec        models.Identity
		accountStr string
		age        int64
		proof      []byte
		status     string
		submitted  time.Time
		verifiedBy sql.NullString
		verifiedAt sql.NullTime
	)
	err := row.Scan(&accountStr, &rec.Name, &age, &rec.DocumentID, &proof, &status, &submitted, &verifiedBy, &verifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("identity %s: %w", account, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	hash, err := id.ProofHashFromBytes(proof)
	if err != nil {
		return nil, fmt.Errorf("decode proof hash for %s: %w", account, err)
	}
	rec.Account = id.AccountID(accountStr)
	rec.Age = uint32(age)
	rec.ProofHash = hash
	rec.Status = models.Status(status)
	rec.SubmittedAt = submitted.UTC()
	if verifiedBy.Valid {
		v := id.AccountID(verifiedBy.String)
		rec.VerifiedBy = &v
	}
	if verifiedAt.Valid {
		at := verifiedAt.Time.UTC()
		rec.VerifiedAt = &at
	}
	return &rec, nil
}
