package register

import (
	"testing"

	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/input"
	"github.com/noah-isme/kasir-pos/internal/money"
)

var rules = money.Rules{QtyPrecision: 3, Rounding: money.ModeFloor}

func newCart() *Cart {
	return NewCart(rules, 10_000_000)
}

func unitProduct() catalog.Product {
	return catalog.Product{ID: 1, Name: "Es Teh", Price: 39_000}
}

func weighedProduct() catalog.Product {
	return catalog.Product{ID: 2, Name: "Gula Pasir", Price: 15_000, AllowDecimalQty: true}
}

func TestAddTwiceEqualsAddThenIncrement(t *testing.T) {
	a := newCart()
	a.Add(unitProduct())
	a.Add(unitProduct())

	b := newCart()
	b.Add(unitProduct())
	b.ChangeQuantity(1, 1)

	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("expected single line carts, got %d and %d", a.Len(), b.Len())
	}
	if a.Find(1).Qty != b.Find(1).Qty || a.Find(1).Qty != 2 {
		t.Fatalf("expected qty 2 in both carts, got %v and %v", a.Find(1).Qty, b.Find(1).Qty)
	}
}

func TestDecrementBelowMinimumRemovesLine(t *testing.T) {
	c := newCart()
	c.Add(unitProduct())
	c.ChangeQuantity(1, -1)
	if c.Len() != 0 {
		t.Fatalf("expected empty cart, got %d lines", c.Len())
	}

	c.Add(weighedProduct())
	c.EditQtyText(2, "0.001")
	c.CommitQty(2)
	c.ChangeQuantity(2, -1)
	if c.Find(2) != nil {
		t.Fatal("expected weighed line removed after decrement below minimum step")
	}
}

func TestQtyCommitAndTotals(t *testing.T) {
	c := newCart()
	c.Add(unitProduct())
	c.EditQtyText(1, "2")
	c.CommitQty(1)

	l := c.Find(1)
	if l.Qty != 2 || l.QtyError != "" {
		t.Fatalf("expected committed qty 2, got %v (%q)", l.Qty, l.QtyError)
	}
	if got := c.LineSubtotal(l); got != 78_000 {
		t.Fatalf("expected line subtotal 78000, got %d", got)
	}
	if totals := c.Totals(); totals.Total != 78_000 || totals.Tax != 0 || totals.Discount != 0 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestPriceOverride(t *testing.T) {
	c := newCart()
	c.Add(unitProduct())
	c.EditQtyText(1, "2")
	c.CommitQty(1)

	c.EditPriceText(1, "45000")
	c.CommitPrice(1)
	l := c.Find(1)
	if l.EditedUnitPrice == nil || *l.EditedUnitPrice != 45_000 {
		t.Fatalf("expected override 45000, got %v", l.EditedUnitPrice)
	}
	if got := c.LineSubtotal(l); got != 90_000 {
		t.Fatalf("expected line subtotal 90000, got %d", got)
	}

	// Committing the base price clears the override.
	c.EditPriceText(1, "39000")
	c.CommitPrice(1)
	if l.EditedUnitPrice != nil {
		t.Fatalf("expected override cleared, got %v", *l.EditedUnitPrice)
	}
	if l.PriceInput != "39000" {
		t.Fatalf("expected mirror reset to base price, got %q", l.PriceInput)
	}
}

func TestPriceCommitEmptyClearsOverride(t *testing.T) {
	c := newCart()
	c.Add(unitProduct())
	c.EditPriceText(1, "45000")
	c.CommitPrice(1)
	c.EditPriceText(1, "")
	c.CommitPrice(1)
	l := c.Find(1)
	if l.EditedUnitPrice != nil {
		t.Fatal("expected override cleared by empty commit")
	}
	if c.LineSubtotal(l) != 39_000 {
		t.Fatalf("expected base subtotal, got %d", c.LineSubtotal(l))
	}
}

func TestCommitErrorLeavesCommittedValue(t *testing.T) {
	c := newCart()
	c.Add(weighedProduct())
	c.EditQtyText(2, "1.5")
	c.CommitQty(2)

	// The sanitizer would truncate this; committing the raw text directly
	// exercises the validator's precision guard.
	c.Find(2).QtyInput = "1.5005"
	c.CommitQty(2)

	l := c.Find(2)
	if l.QtyError != input.MsgQtyPrecision {
		t.Fatalf("expected precision error, got %q", l.QtyError)
	}
	if l.Qty != 1.5 {
		t.Fatalf("expected committed qty unchanged at 1.5, got %v", l.Qty)
	}
	if c.ReadyToPay() {
		t.Fatal("expected cart not ready while a line has an error")
	}

	c.CancelQtyEdit(2)
	if l.QtyError != "" || l.QtyInput != "1.5" {
		t.Fatalf("expected cancel to restore mirror, got %q (%q)", l.QtyInput, l.QtyError)
	}
	if !c.ReadyToPay() {
		t.Fatal("expected cart ready after cancel")
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	c := newCart()
	c.Add(weighedProduct())
	c.EditQtyText(2, "1.500")
	c.CommitQty(2)
	first := c.Find(2).QtyInput

	c.CommitQty(2)
	if c.Find(2).QtyInput != first || c.Find(2).Qty != 1.5 {
		t.Fatalf("expected stable commit, got %q qty %v", c.Find(2).QtyInput, c.Find(2).Qty)
	}
	if first != "1.5" {
		t.Fatalf("expected formatted mirror 1.5, got %q", first)
	}
}

func TestChangeQuantityRegeneratesMirror(t *testing.T) {
	c := newCart()
	c.Add(weighedProduct())
	c.EditQtyText(2, "bad")
	c.CommitQty(2)
	if c.Find(2).QtyError == "" {
		t.Fatal("expected error from committing empty sanitized text")
	}
	c.ChangeQuantity(2, 500)
	l := c.Find(2)
	if l.QtyError != "" {
		t.Fatalf("expected stepper to clear error, got %q", l.QtyError)
	}
	if l.Qty != 1.5 || l.QtyInput != "1.5" {
		t.Fatalf("expected qty 1.5 with mirror 1.5, got %v %q", l.Qty, l.QtyInput)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := newCart()
	c.Add(unitProduct())
	c.Add(weighedProduct())
	c.Remove(1)
	if c.Len() != 1 || c.Find(2) == nil {
		t.Fatalf("expected only weighed line left, got %d lines", c.Len())
	}
	c.Clear()
	if c.Len() != 0 || c.ReadyToPay() {
		t.Fatal("expected empty cart after clear")
	}
}

func TestReadyToPayRequiresLines(t *testing.T) {
	c := newCart()
	if c.ReadyToPay() {
		t.Fatal("empty cart must not be ready")
	}
	c.Add(unitProduct())
	if !c.ReadyToPay() {
		t.Fatal("expected ready after valid add")
	}
}
