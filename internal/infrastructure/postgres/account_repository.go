package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/domain/account"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT id, user_id, name, balance, active, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var a account.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Balance, &a.Active,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &a, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `
		SELECT id, user_id, name, balance, active, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var a account.Account
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Balance, &a.Active,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// accountBalances applies signed deltas to account balances inside the
// active unit of work. The arithmetic happens in the database in a single
// statement; the current balance is never read into application code.
type accountBalances struct {
	tx *sql.Tx
}

func (b *accountBalances) ApplyDelta(ctx context.Context, accountID int64, delta string) error {
	query := `
		UPDATE accounts
		SET balance = balance + CAST($1 AS DECIMAL(10,2)),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := execTx(ctx, b.tx, query, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to apply account balance delta: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		// Holder existence was validated before the unit of work opened;
		// reaching this is an invariant violation, not a user error.
		return fmt.Errorf("account %d vanished during balance delta application", accountID)
	}
	return nil
}
