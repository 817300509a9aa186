package transaction

import (
	"errors"
	"time"

	"centavo/internal/domain/money"
)

// Type is the direction of a transaction.
type Type string

const (
	TypeExpense Type = "EXPENSE"
	TypeIncome  Type = "INCOME"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Source identifies which kind of balance holder a transaction hits.
// Exactly one of AccountID/CreditCardID is set, matching the source.
type Source string

const (
	SourceAccount    Source = "ACCOUNT"
	SourceCreditCard Source = "CREDIT_CARD"
)

// Valid reports whether s is a known transaction source.
func (s Source) Valid() bool {
	return s == SourceAccount || s == SourceCreditCard
}

// Domain errors. Classification and ownership failures surface before any
// unit of work opens; ErrTransactionNotFound comes out of the lock-read.
var (
	ErrTransactionNotFound           = errors.New("transaction not found")
	ErrCategoryOrSubcategoryRequired = errors.New("at least one of category or subcategory is required")
	ErrCategoryNotFoundOrInactive    = errors.New("category not found or inactive")
	ErrSubcategoryNotFoundOrInactive = errors.New("subcategory not found or inactive")
	ErrInvalidType                   = errors.New("invalid transaction type")
	ErrInvalidSource                 = errors.New("invalid transaction source")
	ErrHolderMismatch                = errors.New("transaction source and balance holder reference do not match")
	ErrInvalidValue                  = errors.New("transaction value must be a non-negative decimal")
)

// Transaction is one ledger event. Value is the unsigned magnitude as an
// exact decimal string; the signed effect on the holder's balance is
// derived from (Type, Source), see SignedDelta.
type Transaction struct {
	ID            int64     `json:"id"`
	Value         string    `json:"value"` // e.g. "150.00"
	Date          time.Time `json:"date"`
	Type          Type      `json:"transactionType"`
	Source        Source    `json:"transactionSource"`
	AccountID     *int64    `json:"accountId"`
	CreditCardID  *int64    `json:"creditCardId"`
	CategoryID    *int64    `json:"categoryId"`
	SubcategoryID *int64    `json:"subcategoryId"`
	IsInstallment bool      `json:"isInstallment"`
	TotalMonths   *int      `json:"totalMonths,omitempty"`
	IsRecurring   bool      `json:"isRecurring"`
	PaymentDay    *int      `json:"paymentDay,omitempty"`
	Active        bool      `json:"active"`
	Observation   *string   `json:"observation,omitempty"`
	Tags          []int64   `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HolderID returns the id of the balance holder matching Source.
func (t *Transaction) HolderID() int64 {
	if t.Source == SourceCreditCard {
		if t.CreditCardID != nil {
			return *t.CreditCardID
		}
		return 0
	}
	if t.AccountID != nil {
		return *t.AccountID
	}
	return 0
}

// CreateParams contains parameters for creating a transaction.
// TagIDs == nil means no tag set was supplied; an empty non-nil slice
// explicitly clears associations.
type CreateParams struct {
	Value         string
	Date          time.Time
	Type          Type
	Source        Source
	AccountID     *int64
	CreditCardID  *int64
	CategoryID    *int64
	SubcategoryID *int64
	IsInstallment bool
	TotalMonths   *int
	IsRecurring   bool
	PaymentDay    *int
	Observation   *string
	TagIDs        []int64
}

// Validate checks structural rules that need no store access: value shape,
// enum membership, and the source/holder exclusivity invariant.
func (p *CreateParams) Validate() error {
	d, err := money.Parse(p.Value)
	if err != nil || d.IsNegative() {
		return ErrInvalidValue
	}
	if !p.Type.Valid() {
		return ErrInvalidType
	}
	if !p.Source.Valid() {
		return ErrInvalidSource
	}
	switch p.Source {
	case SourceAccount:
		if p.AccountID == nil || p.CreditCardID != nil {
			return ErrHolderMismatch
		}
	case SourceCreditCard:
		if p.CreditCardID == nil || p.AccountID != nil {
			return ErrHolderMismatch
		}
	}
	if p.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// UpdateParams is a partial patch. Nil fields keep the current value.
// When Source changes, the reference to the abandoned holder kind is
// forced to null by the orchestrator regardless of what the patch says.
type UpdateParams struct {
	Value         *string
	Date          *time.Time
	Type          *Type
	Source        *Source
	AccountID     *int64
	CreditCardID  *int64
	CategoryID    *int64
	SubcategoryID *int64
	IsInstallment *bool
	TotalMonths   *int
	IsRecurring   *bool
	PaymentDay    *int
	Active        *bool
	Observation   *string
	TagIDs        []int64
}
