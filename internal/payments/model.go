// Package payments persists finalized sales. A Draft is assembled once at
// confirm time and never mutated afterwards; the store returns the canonical
// Record which becomes the receipt payload.
package payments

import (
	"time"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// DraftItem snapshots one cart line at confirm time.
type DraftItem struct {
	ProductID          *int64       `json:"productId"`
	Name               string       `json:"name"`
	Quantity           float64      `json:"quantity"`
	BaseUnitPrice      money.Money  `json:"baseUnitPrice"`
	EditedUnitPrice    *money.Money `json:"editedUnitPrice"`
	EffectiveUnitPrice money.Money  `json:"effectiveUnitPrice"`
	LineSubtotal       money.Money  `json:"lineSubtotal"`
	LineDiscount       money.Money  `json:"lineDiscount"`
}

// Draft is the finalized payment payload handed to the store.
type Draft struct {
	InvoiceNumber string      `json:"invoiceNumber"`
	CashierName   string      `json:"cashierName"`
	Subtotal      money.Money `json:"subtotal"`
	Tax           money.Money `json:"tax"`
	Discount      money.Money `json:"discount"`
	Total         money.Money `json:"total"`
	PaidCash      money.Money `json:"paidCash"`
	ChangeDue     money.Money `json:"changeDue"`
	Note          *string     `json:"note"`
	Items         []DraftItem `json:"items"`
}

// ItemRecord is a stored payment line. Quantity keeps the legacy integer
// column alongside the exact decimal value.
type ItemRecord struct {
	ID                 int64        `json:"id"`
	ProductID          *int64       `json:"productId"`
	Name               string       `json:"name"`
	Quantity           int64        `json:"quantity"`
	QuantityDecimal    float64      `json:"quantityDecimal"`
	BaseUnitPrice      money.Money  `json:"baseUnitPrice"`
	EditedUnitPrice    *money.Money `json:"editedUnitPrice"`
	EffectiveUnitPrice money.Money  `json:"effectiveUnitPrice"`
	LineSubtotal       money.Money  `json:"lineSubtotal"`
	LineDiscount       money.Money  `json:"lineDiscount"`
}

// Record is the canonical stored payment.
type Record struct {
	ID            int64        `json:"id"`
	InvoiceNumber string       `json:"invoiceNumber"`
	CashierName   string       `json:"cashierName"`
	Subtotal      money.Money  `json:"subtotal"`
	Tax           money.Money  `json:"tax"`
	Discount      money.Money  `json:"discount"`
	Total         money.Money  `json:"total"`
	PaidCash      money.Money  `json:"paidCash"`
	ChangeDue     money.Money  `json:"changeDue"`
	Note          *string      `json:"note"`
	CreatedAt     time.Time    `json:"createdAt"`
	Items         []ItemRecord `json:"items"`
}
