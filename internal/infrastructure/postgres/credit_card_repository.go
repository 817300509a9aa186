package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/domain/creditcard"
)

type CreditCardRepository struct {
	db *DB
}

func NewCreditCardRepository(db *DB) *CreditCardRepository {
	return &CreditCardRepository{db: db}
}

func (r *CreditCardRepository) GetByID(ctx context.Context, id int64) (*creditcard.CreditCard, error) {
	query := `
		SELECT id, user_id, name, balance, closing_day, due_day, active, created_at, updated_at
		FROM credit_cards
		WHERE id = $1
	`

	var c creditcard.CreditCard
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Balance, &c.ClosingDay, &c.DueDay,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credit card: %w", err)
	}

	return &c, nil
}

func (r *CreditCardRepository) ListByUserID(ctx context.Context, userID int64) ([]*creditcard.CreditCard, error) {
	query := `
		SELECT id, user_id, name, balance, closing_day, due_day, active, created_at, updated_at
		FROM credit_cards
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []*creditcard.CreditCard
	for rows.Next() {
		var c creditcard.CreditCard
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Balance, &c.ClosingDay, &c.DueDay,
			&c.Active, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit card: %w", err)
		}
		cards = append(cards, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit cards: %w", err)
	}

	return cards, nil
}

// creditCardBalances applies signed deltas to a card's outstanding balance
// inside the active unit of work, mirroring accountBalances.
type creditCardBalances struct {
	tx *sql.Tx
}

func (b *creditCardBalances) ApplyDelta(ctx context.Context, creditCardID int64, delta string) error {
	query := `
		UPDATE credit_cards
		SET balance = balance + CAST($1 AS DECIMAL(10,2)),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := execTx(ctx, b.tx, query, delta, creditCardID)
	if err != nil {
		return fmt.Errorf("failed to apply credit card balance delta: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("credit card %d vanished during balance delta application", creditCardID)
	}
	return nil
}
