package account

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
)

// Account is a balance holder. Its balance is an exact decimal string and
// is only ever mutated through atomic signed-delta application inside a
// unit of work; transaction-driven code never overwrites it.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"` // e.g. "1520.00"
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
