package tag

import (
	"context"
)

// Repository defines the interface for tag data access.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Tag, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Tag, error)
	// FindByIDsForUser resolves ids to tags owned by userID. When activeOnly
	// is set, inactive tags are excluded. Missing ids are simply absent from
	// the result; callers compare lengths to detect partial matches.
	FindByIDsForUser(ctx context.Context, ids []int64, userID int64, activeOnly bool) ([]*Tag, error)
}
