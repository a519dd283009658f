package register

import (
	"math"

	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/input"
	"github.com/noah-isme/kasir-pos/internal/money"
)

// Cart is an insertion-ordered collection of lines, unique by product id.
// Between user edits every committed quantity and price is valid; errors
// live only on the input mirrors and block ReadyToPay.
type Cart struct {
	rules            money.Rules
	maxEditablePrice money.Money
	lines            []*Line
}

// Totals carries the cart aggregate. Tax and discount are structurally zero
// but kept as explicit fields so downstream payloads stay forward compatible.
type Totals struct {
	Subtotal money.Money `json:"subtotal"`
	Tax      money.Money `json:"tax"`
	Discount money.Money `json:"discount"`
	Total    money.Money `json:"total"`
}

// NewCart constructs an empty cart with the given numeric policies.
func NewCart(rules money.Rules, maxEditablePrice money.Money) *Cart {
	return &Cart{rules: rules, maxEditablePrice: maxEditablePrice}
}

// Rules exposes the cart's numeric policies.
func (c *Cart) Rules() money.Rules { return c.rules }

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []*Line { return c.lines }

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Find returns the line for a product id, or nil.
func (c *Cart) Find(productID int64) *Line {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l
		}
	}
	return nil
}

// Add appends a new line for the product with quantity one, or increments an
// existing line by one step.
func (c *Cart) Add(p catalog.Product) *Line {
	if existing := c.Find(p.ID); existing != nil {
		c.ChangeQuantity(p.ID, 1)
		return c.Find(p.ID)
	}
	base := p.Price
	if base < 0 {
		base = 0
	}
	line := &Line{
		ProductID:       p.ID,
		Name:            p.Name,
		AllowDecimalQty: p.AllowDecimalQty,
		BaseUnitPrice:   base,
		Qty:             1,
	}
	line.QtyInput = c.rules.FormatQty(line.Qty)
	line.PriceInput = money.FormatAmount(base)
	c.lines = append(c.lines, line)
	return line
}

// ChangeQuantity shifts a line's committed quantity by deltaSteps steps. The
// step is the minimum decimal increment for weighed lines and one unit
// otherwise. A result at or below zero removes the line entirely.
func (c *Cart) ChangeQuantity(productID int64, deltaSteps int) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	step := 1.0
	if l.AllowDecimalQty {
		step = c.rules.QtyStep()
	}
	next := c.rules.SnapQty(l.Qty + float64(deltaSteps)*step)
	if next <= 0 {
		c.Remove(productID)
		return
	}
	if l.AllowDecimalQty {
		if next < step {
			next = step
		}
	} else {
		next = math.Round(next)
		if next < 1 {
			next = 1
		}
	}
	l.Qty = next
	l.QtyInput = c.rules.FormatQty(next)
	l.QtyError = ""
}

// EditQtyText stores sanitized quantity text on the mirror without touching
// the committed quantity.
func (c *Cart) EditQtyText(productID int64, text string) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	l.QtyInput = input.SanitizeQuantity(text, l.AllowDecimalQty, c.rules.Precision())
	l.QtyError = ""
}

// CommitQty validates the quantity mirror. On error the committed quantity is
// left untouched; on success the mirror is reformatted from the rounded value.
func (c *Cart) CommitQty(productID int64) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	value, msg := input.ParseQuantity(l.QtyInput, l.AllowDecimalQty, c.rules)
	if msg != "" {
		l.QtyError = msg
		return
	}
	l.Qty = value
	l.QtyInput = c.rules.FormatQty(value)
	l.QtyError = ""
}

// CancelQtyEdit discards mirror changes, restoring the committed quantity.
func (c *Cart) CancelQtyEdit(productID int64) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	l.QtyInput = c.rules.FormatQty(l.Qty)
	l.QtyError = ""
}

// EditPriceText stores sanitized price text on the mirror.
func (c *Cart) EditPriceText(productID int64, text string) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	l.PriceInput = input.SanitizePrice(text)
	l.PriceError = ""
}

// CommitPrice validates the price mirror. An empty value or one equal to the
// base price clears the override; otherwise the override is set and the
// mirror normalized to the committed value.
func (c *Cart) CommitPrice(productID int64) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	value, msg := input.ParsePrice(l.PriceInput, c.maxEditablePrice)
	if msg != "" {
		l.PriceError = msg
		return
	}
	if value == nil || *value == l.BaseUnitPrice {
		l.EditedUnitPrice = nil
		l.PriceInput = money.FormatAmount(l.BaseUnitPrice)
	} else {
		l.EditedUnitPrice = value
		l.PriceInput = money.FormatAmount(*value)
	}
	l.PriceError = ""
}

// CancelPriceEdit discards mirror changes, restoring the effective price.
func (c *Cart) CancelPriceEdit(productID int64) {
	l := c.Find(productID)
	if l == nil {
		return
	}
	l.PriceInput = money.FormatAmount(l.EffectiveUnitPrice())
	l.PriceError = ""
}

// Remove deletes a line unconditionally.
func (c *Cart) Remove(productID int64) {
	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// LineSubtotal computes the rounded subtotal for one line.
func (c *Cart) LineSubtotal(l *Line) money.Money {
	return c.rules.LineSubtotal(l.EffectiveUnitPrice(), l.Qty)
}

// Totals recomputes the aggregate from the committed values on every read.
func (c *Cart) Totals() Totals {
	lines := make([]money.Money, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, c.LineSubtotal(l))
	}
	subtotal := money.Subtotal(lines)
	return Totals{Subtotal: subtotal, Total: subtotal}
}

// ReadyToPay reports whether settlement may open: the cart is non-empty and
// no line carries a field error.
func (c *Cart) ReadyToPay() bool {
	if len(c.lines) == 0 {
		return false
	}
	for _, l := range c.lines {
		if l.HasError() {
			return false
		}
	}
	return true
}
