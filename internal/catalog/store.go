package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Store persists products in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, name, price, barcode, visible, quick_display, allow_decimal_qty, display_order`

// List returns every product ordered for display.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY display_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get returns a single product by id.
func (s *Store) Get(ctx context.Context, id int64) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// Create inserts a product and returns the stored record.
func (s *Store) Create(ctx context.Context, p Product) (Product, error) {
	p = clean(p)
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO products (name, price, barcode, visible, quick_display, allow_decimal_qty, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		p.Name, p.Price, p.Barcode, p.Visible, p.QuickDisplay, p.AllowDecimalQty, p.DisplayOrder)
	created, err := scanProduct(row)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// Update replaces a product's editable fields and returns the stored record.
func (s *Store) Update(ctx context.Context, p Product) (Product, error) {
	p = clean(p)
	row := s.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1,
		    price = $2,
		    barcode = $3,
		    visible = $4,
		    quick_display = $5,
		    allow_decimal_qty = $6,
		    display_order = $7
		WHERE id = $8
		RETURNING `+productColumns,
		p.Name, p.Price, p.Barcode, p.Visible, p.QuickDisplay, p.AllowDecimalQty, p.DisplayOrder, p.ID)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func clean(p Product) Product {
	p.Name = strings.TrimSpace(p.Name)
	if p.Barcode != nil {
		trimmed := strings.TrimSpace(*p.Barcode)
		if trimmed == "" {
			p.Barcode = nil
		} else {
			p.Barcode = &trimmed
		}
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.DisplayOrder <= 0 {
		p.DisplayOrder = 1
	}
	return p
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Barcode, &p.Visible, &p.QuickDisplay, &p.AllowDecimalQty, &p.DisplayOrder)
	return p, err
}
