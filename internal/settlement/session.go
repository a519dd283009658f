// Package settlement finalizes a cart into an immutable payment record
// against tendered cash.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/noah-isme/kasir-pos/internal/input"
	"github.com/noah-isme/kasir-pos/internal/money"
	"github.com/noah-isme/kasir-pos/internal/payments"
	"github.com/noah-isme/kasir-pos/internal/receipt"
	"github.com/noah-isme/kasir-pos/internal/register"
)

// ErrNotReady is returned when confirmation is attempted while its gating
// conditions do not hold.
var ErrNotReady = errors.New("settlement not ready to confirm")

// Store persists finalized payments. It must return a canonical record or
// fail without side effects visible to this session.
type Store interface {
	CreatePayment(ctx context.Context, draft payments.Draft) (payments.Record, error)
}

// Config groups settlement collaborators and policies.
type Config struct {
	Store         Store
	Printer       receipt.Printer
	Receipts      receipt.Builder
	InvoicePrefix string
	Now           func() time.Time
	RandInt       func(int) int
}

// Session drives one settlement flow over a cart. The session never mutates
// the cart while a confirm is in flight, and a failed confirm leaves cart,
// note, and settlement state exactly as they were so the cashier can retry.
type Session struct {
	cart *register.Cart
	cfg  Config

	cashierName string
	open        bool
	saving      bool
	cashText    string
	note        string
}

// NewSession constructs a settlement session bound to a cart.
func NewSession(cart *register.Cart, cfg Config) *Session {
	return &Session{cart: cart, cfg: cfg}
}

// SetCashier records the cashier responsible for this sale.
func (s *Session) SetCashier(name string) { s.cashierName = name }

// CashierName returns the recorded cashier.
func (s *Session) CashierName() string { return s.cashierName }

// Open starts the settlement flow. It is a no-op unless the cart is ready to
// pay. It reports whether the view is open afterwards.
func (s *Session) Open() bool {
	if s.open {
		return true
	}
	if !s.cart.ReadyToPay() {
		return false
	}
	s.open = true
	return true
}

// Close abandons the settlement view without confirming. Tendered cash is
// discarded; the cart is untouched.
func (s *Session) Close() {
	if s.saving {
		return
	}
	s.open = false
	s.cashText = ""
}

// IsOpen reports whether the settlement view is open.
func (s *Session) IsOpen() bool { return s.open }

// Saving reports whether a confirm is in flight.
func (s *Session) Saving() bool { return s.saving }

// SetCashText stores tendered cash as a sanitized digit string.
func (s *Session) SetCashText(raw string) {
	s.cashText = input.SanitizeCash(raw)
}

// CashText returns the raw tendered digit string.
func (s *Session) CashText() string { return s.cashText }

// CashTendered parses the tendered amount; empty text counts as zero.
func (s *Session) CashTendered() money.Money {
	return input.ParseCash(s.cashText)
}

// SetNote stores the free-form sale note.
func (s *Session) SetNote(note string) { s.note = note }

// Note returns the current sale note.
func (s *Session) Note() string { return s.note }

// ChangeDue returns the cash to hand back, never negative.
func (s *Session) ChangeDue() money.Money {
	change := s.CashTendered() - s.cart.Totals().Total
	if change < 0 {
		return 0
	}
	return change
}

// CanConfirm reports whether confirmation is currently allowed: a positive
// total, sufficient cash, an error-free cart, and no confirm in flight.
func (s *Session) CanConfirm() bool {
	if !s.open || s.saving {
		return false
	}
	if !s.cart.ReadyToPay() {
		return false
	}
	total := s.cart.Totals().Total
	if total <= 0 {
		return false
	}
	return s.CashTendered() >= total
}

// Confirm builds the payment draft, hands it to the store, and on success
// clears the cart and note, closes the view, and routes the canonical record
// to the printer. On failure nothing is mutated and the saving flag is
// cleared so the cashier can retry.
func (s *Session) Confirm(ctx context.Context) (payments.Record, error) {
	if !s.CanConfirm() {
		return payments.Record{}, ErrNotReady
	}
	draft := s.buildDraft()

	s.saving = true
	rec, err := s.cfg.Store.CreatePayment(ctx, draft)
	s.saving = false
	if err != nil {
		return payments.Record{}, fmt.Errorf("create payment: %w", err)
	}

	s.cart.Clear()
	s.note = ""
	s.cashText = ""
	s.open = false

	if s.cfg.Printer != nil {
		// Best effort: a failed print never unwinds a stored payment.
		_ = s.cfg.Printer.Print(ctx, s.cfg.Receipts.Build(rec))
	}
	return rec, nil
}

func (s *Session) buildDraft() payments.Draft {
	totals := s.cart.Totals()
	lines := s.cart.Lines()
	items := make([]payments.DraftItem, 0, len(lines))
	for _, l := range lines {
		productID := l.ProductID
		items = append(items, payments.DraftItem{
			ProductID:          &productID,
			Name:               l.Name,
			Quantity:           l.Qty,
			BaseUnitPrice:      l.BaseUnitPrice,
			EditedUnitPrice:    l.EditedUnitPrice,
			EffectiveUnitPrice: l.EffectiveUnitPrice(),
			LineSubtotal:       s.cart.LineSubtotal(l),
		})
	}
	var note *string
	if s.note != "" {
		n := s.note
		note = &n
	}
	return payments.Draft{
		InvoiceNumber: NewInvoiceNumber(s.cfg.InvoicePrefix, s.now(), s.randInt),
		CashierName:   s.cashierName,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaidCash:      s.CashTendered(),
		ChangeDue:     s.ChangeDue(),
		Note:          note,
		Items:         items,
	}
}

func (s *Session) now() time.Time {
	if s.cfg.Now != nil {
		return s.cfg.Now()
	}
	return time.Now()
}

func (s *Session) randInt(n int) int {
	if s.cfg.RandInt != nil {
		return s.cfg.RandInt(n)
	}
	return rand.IntN(n)
}
