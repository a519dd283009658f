package payments

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// ErrInvalidDraft is returned when a payment draft fails normalization.
var ErrInvalidDraft = errors.New("invalid payment draft")

// normalizedItem carries a draft item plus the legacy integer quantity stored
// alongside the decimal one.
type normalizedItem struct {
	DraftItem
	LegacyQuantity int64
}

// normalizeDraft validates and cleans a draft before it reaches the database.
// Missing effective prices resolve to the override, then the base price, and
// a missing line subtotal is recomputed under the store's rounding rules.
func normalizeDraft(d Draft, rules money.Rules) (Draft, []normalizedItem, error) {
	d.InvoiceNumber = strings.TrimSpace(d.InvoiceNumber)
	if d.InvoiceNumber == "" {
		return Draft{}, nil, fmt.Errorf("invoice number is required: %w", ErrInvalidDraft)
	}
	d.CashierName = strings.TrimSpace(d.CashierName)
	if d.CashierName == "" {
		return Draft{}, nil, fmt.Errorf("cashier name is required: %w", ErrInvalidDraft)
	}
	d.Note = normalizeNote(d.Note)
	if len(d.Items) == 0 {
		return Draft{}, nil, fmt.Errorf("payment must contain at least one item: %w", ErrInvalidDraft)
	}

	items := make([]normalizedItem, 0, len(d.Items))
	for _, item := range d.Items {
		if math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) || item.Quantity <= 0 {
			return Draft{}, nil, fmt.Errorf("item quantity must be greater than 0: %w", ErrInvalidDraft)
		}
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return Draft{}, nil, fmt.Errorf("item name cannot be empty: %w", ErrInvalidDraft)
		}
		if item.BaseUnitPrice < 0 {
			return Draft{}, nil, fmt.Errorf("base unit price cannot be negative: %w", ErrInvalidDraft)
		}
		if item.EditedUnitPrice != nil && *item.EditedUnitPrice < 0 {
			item.EditedUnitPrice = nil
		}
		if item.EffectiveUnitPrice == 0 {
			if item.EditedUnitPrice != nil {
				item.EffectiveUnitPrice = *item.EditedUnitPrice
			} else {
				item.EffectiveUnitPrice = item.BaseUnitPrice
			}
		}
		if item.EffectiveUnitPrice < 0 {
			return Draft{}, nil, fmt.Errorf("effective unit price cannot be negative: %w", ErrInvalidDraft)
		}
		if item.LineSubtotal == 0 {
			item.LineSubtotal = rules.LineSubtotal(item.EffectiveUnitPrice, item.Quantity)
		}
		if item.LineSubtotal < 0 {
			return Draft{}, nil, fmt.Errorf("line subtotal cannot be negative: %w", ErrInvalidDraft)
		}
		if item.LineDiscount < 0 {
			return Draft{}, nil, fmt.Errorf("line discount cannot be negative: %w", ErrInvalidDraft)
		}
		legacy := int64(math.Round(item.Quantity))
		if legacy <= 0 {
			legacy = 1
		}
		items = append(items, normalizedItem{DraftItem: item, LegacyQuantity: legacy})
	}
	return d, items, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
