package verifier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	id "verireg/pkg/domain"
	txcontext "verireg/pkg/platform/tx"
)

// PostgresStore persists the verifier set in the verifiers table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Add(ctx context.Context, account id.AccountID) (bool, error) {
	query := `
		INSERT INTO verifiers (account, added_at)
		VALUES ($1, $2)
		ON CONFLICT (account) DO NOTHING
	`
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, account.String(), s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("add verifier: %w", err)
	}
	return changed(res)
}

func (s *PostgresStore) Remove(ctx context.Context, account id.AccountID) (bool, error) {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM verifiers WHERE account = $1`, account.String())
	if err != nil {
		return false, fmt.Errorf("remove verifier: %w", err)
	}
	return changed(res)
}

// Contains takes a share lock on the row when called inside a transaction,
// so a concurrent removal waits for the caller to commit.
func (s *PostgresStore) Contains(ctx context.Context, account id.AccountID) (bool, error) {
	query := `SELECT account FROM verifiers WHERE account = $1`
	if _, ok := txcontext.From(ctx); ok {
		query += ` FOR SHARE`
	}
	var found string
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, account.String()).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]id.AccountID, error) {
	var accounts []string
	query := `SELECT COALESCE(array_agg(account ORDER BY account), '{}') FROM verifiers`
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query).Scan(pq.Array(&accounts))
	if err != nil {
		return nil, fmt.Errorf("list verifiers: %w", err)
	}
	out := make([]id.AccountID, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, id.AccountID(a))
	}
	return out, nil
}

func changed(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
