package cashier

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the cashier directory in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const cashierColumns = "id, code, name, role, last_active, require_pin, display_order, is_active"

// ListActive returns active cashiers in sign-in screen order.
func (s *Store) ListActive(ctx context.Context) ([]Cashier, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+cashierColumns+" FROM cashiers WHERE is_active ORDER BY display_order ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list cashiers: %w", err)
	}
	defer rows.Close()

	out := make([]Cashier, 0)
	for rows.Next() {
		var c Cashier
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Role, &c.LastActive,
			&c.RequirePin, &c.DisplayOrder, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan cashier: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByCode fetches one cashier plus its PIN hash, which stays inside
// this package.
func (s *Store) GetByCode(ctx context.Context, code string) (Cashier, *string, error) {
	var (
		c    Cashier
		hash *string
	)
	err := s.Pool.QueryRow(ctx,
		"SELECT "+cashierColumns+", pin_hash FROM cashiers WHERE code = $1", code).
		Scan(&c.ID, &c.Code, &c.Name, &c.Role, &c.LastActive,
			&c.RequirePin, &c.DisplayOrder, &c.IsActive, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cashier{}, nil, ErrNotFound
	}
	if err != nil {
		return Cashier{}, nil, fmt.Errorf("get cashier: %w", err)
	}
	return c, hash, nil
}

// SeedDefaults inserts the default roster when the table is empty so a
// fresh install has a working sign-in screen. PINs are hashed before
// they touch the database.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int64
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM cashiers").Scan(&count); err != nil {
		return fmt.Errorf("count cashiers: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, entry := range defaultSeed {
		var hash *string
		if entry.PIN != "" {
			h, err := argon2id.CreateHash(entry.PIN, argon2id.DefaultParams)
			if err != nil {
				return fmt.Errorf("hash pin: %w", err)
			}
			hash = &h
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO cashiers (code, name, role, last_active, require_pin, pin_hash, display_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.Code, entry.Name, entry.Role, entry.LastActive,
			entry.RequirePin, hash, int64(i+1))
		if err != nil {
			return fmt.Errorf("seed cashier %s: %w", entry.Code, err)
		}
	}
	return tx.Commit(ctx)
}
