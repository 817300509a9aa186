package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/domain/transaction"
)

const transactionColumns = `id, value, date, type, source, account_id, credit_card_id,
	       category_id, subcategory_id, is_installment, total_months, is_recurring,
	       payment_day, active, observation, created_at, updated_at`

// TransactionRepository is the read side of transaction storage, used
// outside mutation units of work.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, accountID, limit, offset)
}

func (r *TransactionRepository) ListByCreditCardID(ctx context.Context, creditCardID int64, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE credit_card_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, creditCardID, limit, offset)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// ListTagIDs returns the tag ids associated with one transaction.
func (r *TransactionRepository) ListTagIDs(ctx context.Context, transactionID int64) ([]int64, error) {
	query := `
		SELECT tag_id
		FROM transaction_tags
		WHERE transaction_id = $1
		ORDER BY tag_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction tags: %w", err)
	}
	defer rows.Close()

	tagIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tag id: %w", err)
		}
		tagIDs = append(tagIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction tags: %w", err)
	}

	return tagIDs, nil
}

// txRecords mutates transaction rows inside the active unit of work.
type txRecords struct {
	tx *sql.Tx
}

func (r *txRecords) Insert(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (value, date, type, source, account_id, credit_card_id,
		                          category_id, subcategory_id, is_installment, total_months,
		                          is_recurring, payment_day, active, observation)
		VALUES (CAST($1 AS DECIMAL(10,2)), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, $13)
		RETURNING ` + transactionColumns

	t, err := scanTransaction(queryRowTx(
		ctx, r.tx, query,
		params.Value, params.Date, params.Type, params.Source,
		params.AccountID, params.CreditCardID, params.CategoryID, params.SubcategoryID,
		params.IsInstallment, params.TotalMonths, params.IsRecurring, params.PaymentDay,
		params.Observation,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

func (r *txRecords) Update(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET value = CAST($1 AS DECIMAL(10,2)),
		    date = $2,
		    type = $3,
		    source = $4,
		    account_id = $5,
		    credit_card_id = $6,
		    category_id = $7,
		    subcategory_id = $8,
		    is_installment = $9,
		    total_months = $10,
		    is_recurring = $11,
		    payment_day = $12,
		    active = $13,
		    observation = $14,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $15
		RETURNING ` + transactionColumns

	updated, err := scanTransaction(queryRowTx(
		ctx, r.tx, query,
		t.Value, t.Date, t.Type, t.Source,
		t.AccountID, t.CreditCardID, t.CategoryID, t.SubcategoryID,
		t.IsInstallment, t.TotalMonths, t.IsRecurring, t.PaymentDay,
		t.Active, t.Observation, t.ID,
	))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return updated, nil
}

func (r *txRecords) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM transactions WHERE id = $1`

	result, err := execTx(ctx, r.tx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

// FindByIDForUpdate lock-reads the row; the lock is held until the
// enclosing unit of work commits or rolls back.
func (r *txRecords) FindByIDForUpdate(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`

	t, err := scanTransaction(queryRowTx(ctx, r.tx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction row: %w", err)
	}
	return t, nil
}

// scanner is satisfied by *sql.Rows and the traced row wrappers.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var accountID, creditCardID, categoryID, subcategoryID sql.NullInt64
	var totalMonths, paymentDay sql.NullInt32
	var observation sql.NullString

	err := s.Scan(
		&t.ID, &t.Value, &t.Date, &t.Type, &t.Source,
		&accountID, &creditCardID, &categoryID, &subcategoryID,
		&t.IsInstallment, &totalMonths, &t.IsRecurring, &paymentDay,
		&t.Active, &observation,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		t.AccountID = &accountID.Int64
	}
	if creditCardID.Valid {
		t.CreditCardID = &creditCardID.Int64
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if subcategoryID.Valid {
		t.SubcategoryID = &subcategoryID.Int64
	}
	if totalMonths.Valid {
		months := int(totalMonths.Int32)
		t.TotalMonths = &months
	}
	if paymentDay.Valid {
		day := int(paymentDay.Int32)
		t.PaymentDay = &day
	}
	if observation.Valid {
		t.Observation = &observation.String
	}

	return &t, nil
}
