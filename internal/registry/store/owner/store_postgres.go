package owner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "verireg/pkg/domain"
	txcontext "verireg/pkg/platform/tx"
)

// PostgresStore keeps the owner in the single-row registry_owner table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitOwner inserts configured only when no owner row exists, then reads
// the row back. Two processes racing on a fresh database agree on whichever
// insert committed first.
func (s *PostgresStore) InitOwner(ctx context.Context, configured id.AccountID) (id.AccountID, bool, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)

	created := false
	if !configured.IsNil() {
		res, err := exec.ExecContext(ctx,
			`INSERT INTO registry_owner (singleton, account) VALUES (TRUE, $1) ON CONFLICT (singleton) DO NOTHING`,
			configured.String())
		if err != nil {
			return "", false, fmt.Errorf("init owner: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", false, fmt.Errorf("init owner: %w", err)
		}
		created = n > 0
	}

	var account string
	err := exec.QueryRowContext(ctx, `SELECT account FROM registry_owner WHERE singleton`).Scan(&account)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, errMissingOwner
	}
	if err != nil {
		return "", false, fmt.Errorf("read owner: %w", err)
	}
	return id.AccountID(account), created, nil
}
