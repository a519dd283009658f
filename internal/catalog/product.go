// Package catalog owns the product schema consumed by the register. Raw
// records from seeds or imports are normalized once at the boundary so the
// rest of the system never inspects heterogeneous shapes.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// Product is the canonical catalog record. The register copies name and
// price at add-time; later catalog edits do not alter existing cart lines.
type Product struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Price           money.Money `json:"price"`
	Barcode         *string     `json:"barcode"`
	Visible         bool        `json:"visible"`
	QuickDisplay    bool        `json:"quickDisplay"`
	AllowDecimalQty bool        `json:"allowDecimalQty"`
	DisplayOrder    int64       `json:"displayOrder"`
}

// RawProduct is an untyped record as found in seed files and imports, where
// field names and casings vary between sources.
type RawProduct map[string]json.RawMessage

// Normalize maps a raw record onto the canonical schema, applying the
// defaulting rules exactly once.
func (r RawProduct) Normalize() Product {
	p := Product{
		Name:         strings.TrimSpace(r.text("name", "title", "productName")),
		Price:        r.integer(0, "price", "unitPrice", "basePrice", "price_cents"),
		Visible:      r.boolean(true, "visible", "isVisible", "active"),
		QuickDisplay: r.boolean(false, "quickDisplay", "quick_display", "pinned"),
		DisplayOrder: r.integer(1, "displayOrder", "display_order", "sortOrder"),
		AllowDecimalQty: r.boolean(false,
			"allowDecimalQty", "allow_decimal_qty", "fractional", "weighed"),
	}
	p.ID = r.integer(0, "id", "productId", "product_id")
	if p.Price < 0 {
		p.Price = 0
	}
	if p.DisplayOrder <= 0 {
		p.DisplayOrder = 1
	}
	if code := strings.TrimSpace(r.text("barcode", "ean", "sku")); code != "" {
		p.Barcode = &code
	}
	return p
}

func (r RawProduct) lookup(aliases ...string) (json.RawMessage, bool) {
	for _, alias := range aliases {
		for key, value := range r {
			if strings.EqualFold(key, alias) {
				return value, true
			}
		}
	}
	return nil, false
}

func (r RawProduct) text(aliases ...string) string {
	raw, ok := r.lookup(aliases...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (r RawProduct) integer(def int64, aliases ...string) int64 {
	raw, ok := r.lookup(aliases...)
	if !ok {
		return def
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return def
		}
		return int64(f)
	}
	return n
}

func (r RawProduct) boolean(def bool, aliases ...string) bool {
	raw, ok := r.lookup(aliases...)
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return def
		}
		return n != 0
	}
	return b
}
