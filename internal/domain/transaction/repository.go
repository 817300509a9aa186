package transaction

import (
	"context"

	"centavo/internal/domain/account"
	"centavo/internal/domain/category"
	"centavo/internal/domain/creditcard"
	"centavo/internal/domain/tag"
)

// Repository is the read side of transaction storage, outside any unit of
// work. GetByID returns (nil, nil) when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	ListByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*Transaction, error)
	ListByCreditCardID(ctx context.Context, creditCardID int64, limit, offset int) ([]*Transaction, error)
	ListTagIDs(ctx context.Context, transactionID int64) ([]int64, error)
}

// UnitOfWork executes fn inside one atomic database transaction: every
// store call made through ops shares the same connection, and the whole
// sequence commits on normal return or rolls back on any error. There is
// no ambient connection state.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ops MutationOps) error) error
}

// MutationOps are the store capabilities bound to the active unit of work.
// Balances selects the balance-holder capability by source tag, so the
// orchestrator never branches on concrete holder types.
type MutationOps interface {
	Records() RecordWriter
	Balances(source Source) BalanceApplier
	TagLinks() TagLinkWriter
}

// RecordWriter mutates transaction rows inside the active unit of work.
// FindByIDForUpdate acquires a row lock held until commit or rollback,
// serializing concurrent mutations of the same transaction id. It returns
// (nil, nil) when the row does not exist.
type RecordWriter interface {
	Insert(ctx context.Context, params CreateParams) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) (*Transaction, error)
	Delete(ctx context.Context, id int64) error
	FindByIDForUpdate(ctx context.Context, id int64) (*Transaction, error)
}

// BalanceApplier applies one signed decimal delta to one balance holder as
// a single atomic in-database statement. The current balance is never read
// into application code, so concurrent deltas against the same holder
// cannot lose updates. A missing holder is a programming-invariant failure
// surfaced as an error, not a user-facing condition.
type BalanceApplier interface {
	ApplyDelta(ctx context.Context, holderID int64, delta string) error
}

// TagLinkWriter replaces the transaction/tag join rows for one transaction
// (delete-then-insert), making tag state idempotent across repeated calls.
type TagLinkWriter interface {
	Replace(ctx context.Context, transactionID int64, tagIDs []int64) error
}

// Lookup collaborators consumed by the validator. All return (nil, nil)
// when the entity does not exist.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

type CreditCardLookup interface {
	GetByID(ctx context.Context, id int64) (*creditcard.CreditCard, error)
}

type CategoryLookup interface {
	GetByID(ctx context.Context, id int64) (*category.Category, error)
}

type SubcategoryLookup interface {
	GetByID(ctx context.Context, id int64) (*category.Subcategory, error)
}

type TagLookup interface {
	FindByIDsForUser(ctx context.Context, ids []int64, userID int64, activeOnly bool) ([]*tag.Tag, error)
}
