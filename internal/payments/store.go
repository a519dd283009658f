package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// ErrNotFound indicates the requested payment does not exist.
var ErrNotFound = errors.New("payment not found")

// historyLimit caps the payment history listing.
const historyLimit = 200

// Store persists payments in Postgres. CreatePayment is transactional: either
// the payment and all of its items land, or nothing does.
type Store struct {
	Pool  *pgxpool.Pool
	Rules money.Rules
}

// CreatePayment validates the draft, writes it atomically, and returns the
// canonical hydrated record.
func (s *Store) CreatePayment(ctx context.Context, draft Draft) (Record, error) {
	if s == nil || s.Pool == nil {
		return Record{}, errors.New("payments store not configured")
	}
	draft, items, err := normalizeDraft(draft, s.Rules)
	if err != nil {
		return Record{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var paymentID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (invoice_number, cashier_name, subtotal, tax, total, discount, paid_cash, change_due, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		draft.InvoiceNumber, draft.CashierName, draft.Subtotal, draft.Tax, draft.Total,
		draft.Discount, draft.PaidCash, draft.ChangeDue, draft.Note,
	).Scan(&paymentID)
	if err != nil {
		return Record{}, fmt.Errorf("insert payment: %w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO payment_items (payment_id, product_id, name, quantity, price,
				quantity_decimal, base_unit_price, edited_unit_price, line_subtotal, line_discount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			paymentID, item.ProductID, item.Name, item.LegacyQuantity, item.EffectiveUnitPrice,
			item.Quantity, item.BaseUnitPrice, item.EditedUnitPrice, item.LineSubtotal, item.LineDiscount)
		if err != nil {
			return Record{}, fmt.Errorf("insert payment item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return s.GetPayment(ctx, paymentID)
}

// GetPayment returns a single payment with its items.
func (s *Store) GetPayment(ctx context.Context, id int64) (Record, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, invoice_number, cashier_name, subtotal, tax, total, discount,
		       paid_cash, change_due, note, created_at
		FROM payments
		WHERE id = $1`, id)
	rec, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	items, err := s.listItems(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec.Items = items
	return rec, nil
}

// ListPayments returns recent payments, newest first.
func (s *Store) ListPayments(ctx context.Context) ([]Record, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, invoice_number, cashier_name, subtotal, tax, total, discount,
		       paid_cash, change_due, note, created_at
		FROM payments
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, 32)
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range records {
		items, err := s.listItems(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Items = items
	}
	return records, nil
}

func (s *Store) listItems(ctx context.Context, paymentID int64) ([]ItemRecord, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, name, quantity, price,
		       quantity_decimal, base_unit_price, edited_unit_price, line_subtotal, line_discount
		FROM payment_items
		WHERE payment_id = $1
		ORDER BY id ASC`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list payment items: %w", err)
	}
	defer rows.Close()

	items := make([]ItemRecord, 0, 8)
	for rows.Next() {
		var (
			item            ItemRecord
			price           money.Money
			quantityDecimal *float64
			basePrice       *money.Money
			lineSubtotal    *money.Money
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Quantity, &price,
			&quantityDecimal, &basePrice, &item.EditedUnitPrice, &lineSubtotal, &item.LineDiscount); err != nil {
			return nil, err
		}
		// Rows written before the decimal columns existed fall back to the
		// legacy integer quantity and stored price.
		item.EffectiveUnitPrice = price
		item.QuantityDecimal = float64(item.Quantity)
		if quantityDecimal != nil {
			item.QuantityDecimal = *quantityDecimal
		}
		item.BaseUnitPrice = price
		if basePrice != nil {
			item.BaseUnitPrice = *basePrice
		}
		if lineSubtotal != nil {
			item.LineSubtotal = *lineSubtotal
		} else {
			item.LineSubtotal = s.Rules.LineSubtotal(price, item.QuantityDecimal)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanPayment(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.InvoiceNumber, &rec.CashierName, &rec.Subtotal, &rec.Tax,
		&rec.Total, &rec.Discount, &rec.PaidCash, &rec.ChangeDue, &rec.Note, &rec.CreatedAt)
	return rec, err
}
