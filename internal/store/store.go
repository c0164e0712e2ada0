// Package store defines the persistence interface for catalog
// products. Implementations live in subpackages (postgres, memory).
package store

import (
	"context"

	"github.com/fullstack/catalog-sync/internal/catalog"
)

// Filters narrows a product search. Nil fields are not applied; the
// remaining criteria combine conjunctively. Title and ProductType
// match case-insensitively (substring and equality respectively) and
// the price range is inclusive on both ends.
type Filters struct {
	Title       *string
	ProductType *string
	MinPrice    *float64
	MaxPrice    *float64
	Available   *bool
}

// Empty reports whether no criterion is set.
func (f Filters) Empty() bool {
	return f.Title == nil && f.ProductType == nil && f.MinPrice == nil &&
		f.MaxPrice == nil && f.Available == nil
}

// Store is the persistence contract for catalog products. Every
// listing operation orders results newest-created first. Absence of a
// row is reported through the boolean return, not an error.
type Store interface {
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// FindAll returns every product, newest first.
	FindAll(ctx context.Context) ([]catalog.Product, error)

	// FindByID returns the product with the given id, or ok=false.
	FindByID(ctx context.Context, id int64) (catalog.Product, bool, error)

	// Save inserts a new row, stamping creation and update timestamps,
	// and returns the product with its assigned identifier.
	Save(ctx context.Context, p catalog.Product) (catalog.Product, error)

	// Update overwrites all mutable fields of an existing row and
	// stamps a fresh update timestamp. ok=false when no row matched.
	Update(ctx context.Context, p catalog.Product) (catalog.Product, bool, error)

	// DeleteByID removes one row and reports whether a row was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// DeleteAll removes every row.
	DeleteAll(ctx context.Context) error

	// Count returns the total number of rows.
	Count(ctx context.Context) (int64, error)

	// FindByTitleContaining matches titles case-insensitively by
	// substring, newest first.
	FindByTitleContaining(ctx context.Context, term string) ([]catalog.Product, error)

	// FindByFilters applies the provided criteria conjunctively.
	FindByFilters(ctx context.Context, f Filters) ([]catalog.Product, error)

	// DistinctProductTypes returns the sorted set of non-empty product
	// types across all rows.
	DistinctProductTypes(ctx context.Context) ([]string, error)

	// Close releases backing resources.
	Close()
}
