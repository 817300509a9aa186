package creditcard

import (
	"context"
)

// Repository defines the interface for credit card data access.
// GetByID returns (nil, nil) when the card does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*CreditCard, error)
	ListByUserID(ctx context.Context, userID int64) ([]*CreditCard, error)
}
