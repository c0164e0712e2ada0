// Package postgres provides the Postgres-backed catalog store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fullstack/catalog-sync/internal/catalog"
	"github.com/fullstack/catalog-sync/internal/store"
)

// Config controls the Postgres connection pool used for product rows.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pool is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists catalog products in a Postgres table with the variant
// list serialized into a jsonb column.
type Store struct {
	pool   pool
	clock  catalog.Clock
	logger *zap.Logger
}

const productColumns = `id, title, handle, vendor, product_type, price, compare_at_price,
	sku, available, description, image_url, variants, created_at, updated_at`

// New connects a pool using the provided config and wraps it in a Store.
func New(ctx context.Context, cfg Config, clock catalog.Clock, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(p, clock, logger)
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing with pgxmock).
func NewWithPool(p pool, clock catalog.Clock, logger *zap.Logger) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: p, clock: clock, logger: logger}, nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindAll returns every product, newest-created first.
func (s *Store) FindAll(ctx context.Context) ([]catalog.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)
	return s.queryProducts(ctx, query)
}

// FindByID returns one product, or ok=false when no row matches.
func (s *Store) FindByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := s.scanProduct(s.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		return catalog.Product{}, false, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, true, nil
}

// Save inserts a new row, stamping both timestamps, and returns the
// product with its assigned identifier.
func (s *Store) Save(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	variantsJSON, err := marshalVariants(p.Variants)
	if err != nil {
		return catalog.Product{}, err
	}
	now := s.clock.Now()
	query := `
INSERT INTO products (title, handle, vendor, product_type, price, compare_at_price,
	sku, available, description, image_url, variants, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`
	err = s.pool.QueryRow(ctx, query,
		p.Title,
		p.Handle,
		p.Vendor,
		p.ProductType,
		p.Price,
		p.CompareAtPrice,
		p.SKU,
		p.Available,
		p.Description,
		p.ImageURL,
		variantsJSON,
		now,
		now,
	).Scan(&p.ID)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// Update overwrites all mutable fields of the row identified by p.ID
// and stamps a fresh update timestamp. ok=false when no row matched.
func (s *Store) Update(ctx context.Context, p catalog.Product) (catalog.Product, bool, error) {
	variantsJSON, err := marshalVariants(p.Variants)
	if err != nil {
		return catalog.Product{}, false, err
	}
	now := s.clock.Now()
	query := `
UPDATE products
SET title = $1, handle = $2, vendor = $3, product_type = $4, price = $5,
	compare_at_price = $6, sku = $7, available = $8, description = $9,
	image_url = $10, variants = $11, updated_at = $12
WHERE id = $13`
	tag, err := s.pool.Exec(ctx, query,
		p.Title,
		p.Handle,
		p.Vendor,
		p.ProductType,
		p.Price,
		p.CompareAtPrice,
		p.SKU,
		p.Available,
		p.Description,
		p.ImageURL,
		variantsJSON,
		now,
		p.ID,
	)
	if err != nil {
		return catalog.Product{}, false, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.Product{}, false, nil
	}
	p.UpdatedAt = now
	return p, true, nil
}

// DeleteByID removes one row and reports whether anything was removed.
func (s *Store) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAll truncates the products table.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

// Count returns the total product row count.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// FindByTitleContaining matches titles case-insensitively by substring.
func (s *Store) FindByTitleContaining(ctx context.Context, term string) ([]catalog.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
WHERE title ILIKE $1
ORDER BY created_at DESC`, productColumns)
	return s.queryProducts(ctx, query, "%"+term+"%")
}

// FindByFilters applies the provided criteria conjunctively; absent
// criteria do not narrow the result.
func (s *Store) FindByFilters(ctx context.Context, f store.Filters) ([]catalog.Product, error) {
	var (
		clauses []string
		args    []any
	)
	next := func() int { return len(args) + 1 }

	if f.Title != nil && strings.TrimSpace(*f.Title) != "" {
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", next()))
		args = append(args, "%"+*f.Title+"%")
	}
	if f.ProductType != nil && strings.TrimSpace(*f.ProductType) != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(product_type) = LOWER($%d)", next()))
		args = append(args, *f.ProductType)
	}
	if f.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= $%d", next()))
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= $%d", next()))
		args = append(args, *f.MaxPrice)
	}
	if f.Available != nil {
		clauses = append(clauses, fmt.Sprintf("available = $%d", next()))
		args = append(args, *f.Available)
	}

	query := fmt.Sprintf(`SELECT %s FROM products`, productColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return s.queryProducts(ctx, query, args...)
}

// DistinctProductTypes returns the sorted set of non-empty product
// types. Rows synced from upstream always carry a type; hand-created
// rows may not, so empty strings are excluded here.
func (s *Store) DistinctProductTypes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT product_type FROM products
WHERE product_type IS NOT NULL AND product_type <> ''
ORDER BY product_type`)
	if err != nil {
		return nil, fmt.Errorf("distinct product types: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0, 8)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan product type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product types: %w", err)
	}
	return types, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Product, 0, 16)
	for rows.Next() {
		p, err := s.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (s *Store) scanProduct(row pgx.Row) (catalog.Product, error) {
	var (
		p            catalog.Product
		variantsJSON []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Handle,
		&p.Vendor,
		&p.ProductType,
		&p.Price,
		&p.CompareAtPrice,
		&p.SKU,
		&p.Available,
		&p.Description,
		&p.ImageURL,
		&variantsJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return catalog.Product{}, err
	}
	p.Variants = unmarshalVariants(variantsJSON, s.logger)
	return p, nil
}

func marshalVariants(variants []catalog.Variant) ([]byte, error) {
	if variants == nil {
		variants = []catalog.Variant{}
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("marshal variants: %w", err)
	}
	return data, nil
}

// unmarshalVariants never fails a row read: a corrupt variants column
// degrades to an empty list.
func unmarshalVariants(data []byte, logger *zap.Logger) []catalog.Variant {
	if len(data) == 0 {
		return []catalog.Variant{}
	}
	var variants []catalog.Variant
	if err := json.Unmarshal(data, &variants); err != nil {
		logger.Warn("unreadable variants column, treating as empty", zap.Error(err))
		return []catalog.Variant{}
	}
	if variants == nil {
		return []catalog.Variant{}
	}
	return variants
}
