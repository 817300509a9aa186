package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"centavo/internal/domain/transaction"
)

// UnitOfWork runs mutation callbacks inside one database transaction.
// The callback gets store capabilities bound to that transaction; commit
// happens on normal return, rollback on any error. Callers rely entirely
// on this rollback; there is no compensation logic anywhere above.
type UnitOfWork struct {
	db *DB
}

func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Run(ctx context.Context, fn func(ops transaction.MutationOps) error) error {
	tx, err := u.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txOps{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("Error rolling back unit of work: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txOps hands out tx-bound store capabilities. Balances selects the
// balance-holder implementation by source tag.
type txOps struct {
	tx *sql.Tx
}

func (o *txOps) Records() transaction.RecordWriter {
	return &txRecords{tx: o.tx}
}

func (o *txOps) Balances(source transaction.Source) transaction.BalanceApplier {
	if source == transaction.SourceCreditCard {
		return &creditCardBalances{tx: o.tx}
	}
	return &accountBalances{tx: o.tx}
}

func (o *txOps) TagLinks() transaction.TagLinkWriter {
	return &txTagLinks{tx: o.tx}
}
