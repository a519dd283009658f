// Package register holds the in-memory cart a cashier builds during a sale.
// All transitions are synchronous; callers serialize access per terminal.
package register

import (
	"github.com/noah-isme/kasir-pos/internal/money"
)

// Line is one cart entry. Name and base price are copied from the catalog at
// add-time; catalog edits never retroactively alter open carts. The *Input
// fields mirror what the cashier is typing and carry field-level error
// messages; only the committed Qty and EditedUnitPrice participate in totals.
type Line struct {
	ProductID       int64
	Name            string
	AllowDecimalQty bool

	BaseUnitPrice   money.Money
	EditedUnitPrice *money.Money
	Qty             float64

	QtyInput   string
	QtyError   string
	PriceInput string
	PriceError string
}

// EffectiveUnitPrice returns the override price when set, else the base price.
func (l *Line) EffectiveUnitPrice() money.Money {
	if l.EditedUnitPrice != nil {
		return *l.EditedUnitPrice
	}
	return l.BaseUnitPrice
}

// HasError reports whether either input mirror carries a validation error.
func (l *Line) HasError() bool {
	return l.QtyError != "" || l.PriceError != ""
}
