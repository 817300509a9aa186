package creditcard

import (
	"errors"
	"time"
)

var (
	ErrCreditCardNotFound = errors.New("credit card not found")
)

// CreditCard is a balance holder. Balance tracks the outstanding amount on
// the card: expenses grow it, refunds and payments shrink it. Like account
// balances it only moves through atomic signed-delta application.
type CreditCard struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	Balance    string    `json:"balance"` // outstanding amount, e.g. "350.00"
	ClosingDay int       `json:"closingDay"`
	DueDay     int       `json:"dueDay"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
