package category

import (
	"context"
)

// Repository defines the interface for category data access.
// Lookups return (nil, nil) when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
}

// SubcategoryRepository defines the interface for subcategory data access.
type SubcategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*Subcategory, error)
	ListByCategoryID(ctx context.Context, categoryID int64) ([]*Subcategory, error)
}
