// Package memory provides an in-memory catalog store with the same
// semantics as the Postgres implementation. It backs tests and
// DSN-less local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fullstack/catalog-sync/internal/catalog"
	"github.com/fullstack/catalog-sync/internal/store"
)

// Store keeps products in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	products map[int64]catalog.Product
	nextID   int64
	clock    catalog.Clock
}

// New creates an empty Store stamping rows with the given clock.
func New(clock catalog.Clock) *Store {
	return &Store{
		products: make(map[int64]catalog.Product),
		nextID:   1,
		clock:    clock,
	}
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// FindAll returns every product, newest-created first.
func (s *Store) FindAll(context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedSnapshot(func(catalog.Product) bool { return true }), nil
}

// FindByID returns the product with the given id, or ok=false.
func (s *Store) FindByID(_ context.Context, id int64) (catalog.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok, nil
}

// Save assigns the next identifier, stamps timestamps, and stores the
// product.
func (s *Store) Save(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Variants == nil {
		p.Variants = []catalog.Variant{}
	}
	s.products[p.ID] = p
	return p, nil
}

// Update overwrites an existing row; ok=false when the id is unknown.
func (s *Store) Update(_ context.Context, p catalog.Product) (catalog.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[p.ID]
	if !ok {
		return catalog.Product{}, false, nil
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock.Now()
	if p.Variants == nil {
		p.Variants = []catalog.Variant{}
	}
	s.products[p.ID] = p
	return p, true, nil
}

// DeleteByID removes one row and reports whether it existed.
func (s *Store) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// DeleteAll removes every row.
func (s *Store) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]catalog.Product)
	return nil
}

// Count returns the number of stored products.
func (s *Store) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

// FindByTitleContaining matches titles case-insensitively by substring.
func (s *Store) FindByTitleContaining(_ context.Context, term string) ([]catalog.Product, error) {
	needle := strings.ToLower(term)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedSnapshot(func(p catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

// FindByFilters applies the provided criteria conjunctively.
func (s *Store) FindByFilters(_ context.Context, f store.Filters) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedSnapshot(func(p catalog.Product) bool {
		return matches(p, f)
	}), nil
}

// DistinctProductTypes returns the sorted set of non-empty types.
func (s *Store) DistinctProductTypes(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, p := range s.products {
		if p.ProductType != "" {
			seen[p.ProductType] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func matches(p catalog.Product, f store.Filters) bool {
	if f.Title != nil && strings.TrimSpace(*f.Title) != "" {
		if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(*f.Title)) {
			return false
		}
	}
	if f.ProductType != nil && strings.TrimSpace(*f.ProductType) != "" {
		if !strings.EqualFold(p.ProductType, *f.ProductType) {
			return false
		}
	}
	if f.MinPrice != nil {
		if p.Price == nil || *p.Price < *f.MinPrice {
			return false
		}
	}
	if f.MaxPrice != nil {
		if p.Price == nil || *p.Price > *f.MaxPrice {
			return false
		}
	}
	if f.Available != nil && p.Available != *f.Available {
		return false
	}
	return true
}

// sortedSnapshot copies matching products ordered newest-created
// first, with id as a tie-breaker since the clock may not advance
// between inserts.
func (s *Store) sortedSnapshot(keep func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
