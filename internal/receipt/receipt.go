// Package receipt assembles the hand-off payload for the printing
// collaborator. Rendering and print triggering live outside this service;
// every monetary field in the payload is a fully resolved, rounded integer.
package receipt

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-pos/internal/money"
	"github.com/noah-isme/kasir-pos/internal/payments"
)

// Item is one printed line.
type Item struct {
	Name               string      `json:"name"`
	Quantity           float64     `json:"quantity"`
	BaseUnitPrice      money.Money `json:"baseUnitPrice"`
	EffectiveUnitPrice money.Money `json:"effectiveUnitPrice"`
	LineDiscount       money.Money `json:"lineDiscount"`
	LineSubtotal       money.Money `json:"lineSubtotal"`
}

// Payload is everything the printer needs to render a receipt.
type Payload struct {
	StoreName     string      `json:"storeName"`
	StoreAddress  string      `json:"storeAddress"`
	PaperWidth    int         `json:"paperWidth"`
	InvoiceNumber string      `json:"invoiceNumber"`
	IssuedAt      time.Time   `json:"issuedAt"`
	CashierName   string      `json:"cashierName"`
	Items         []Item      `json:"items"`
	Subtotal      money.Money `json:"subtotal"`
	Tax           money.Money `json:"tax"`
	Discount      money.Money `json:"discount"`
	Total         money.Money `json:"total"`
	PaidCash      money.Money `json:"paidCash"`
	ChangeDue     money.Money `json:"changeDue"`
	Note          *string     `json:"note"`
}

// Builder stamps store identity onto payloads.
type Builder struct {
	StoreName    string
	StoreAddress string
	PaperWidth   int
}

// Build maps a canonical payment record onto a receipt payload.
func (b Builder) Build(rec payments.Record) Payload {
	items := make([]Item, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, Item{
			Name:               it.Name,
			Quantity:           it.QuantityDecimal,
			BaseUnitPrice:      it.BaseUnitPrice,
			EffectiveUnitPrice: it.EffectiveUnitPrice,
			LineDiscount:       it.LineDiscount,
			LineSubtotal:       it.LineSubtotal,
		})
	}
	width := b.PaperWidth
	if width <= 0 {
		width = 32
	}
	return Payload{
		StoreName:     b.StoreName,
		StoreAddress:  b.StoreAddress,
		PaperWidth:    width,
		InvoiceNumber: rec.InvoiceNumber,
		IssuedAt:      rec.CreatedAt,
		CashierName:   rec.CashierName,
		Items:         items,
		Subtotal:      rec.Subtotal,
		Tax:           rec.Tax,
		Discount:      rec.Discount,
		Total:         rec.Total,
		PaidCash:      rec.PaidCash,
		ChangeDue:     rec.ChangeDue,
		Note:          rec.Note,
	}
}

// Printer receives finished receipt payloads.
type Printer interface {
	Print(ctx context.Context, p Payload) error
}

// LogPrinter writes receipts to the structured log, standing in for a real
// print spooler during development.
type LogPrinter struct {
	Logger zerolog.Logger
}

// Print implements Printer.
func (p LogPrinter) Print(_ context.Context, payload Payload) error {
	p.Logger.Info().
		Str("invoice_number", payload.InvoiceNumber).
		Str("cashier", payload.CashierName).
		Int("lines", len(payload.Items)).
		Int64("total", payload.Total).
		Int64("paid_cash", payload.PaidCash).
		Int64("change_due", payload.ChangeDue).
		Msg("receipt_handoff")
	return nil
}
