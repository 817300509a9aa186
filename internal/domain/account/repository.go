package account

import (
	"context"
)

// Repository defines the interface for account data access.
// GetByID returns (nil, nil) when the account does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)
}
