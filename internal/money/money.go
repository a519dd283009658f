package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money represents a monetary value in whole currency units.
type Money = int64

// DefaultQtyPrecision is the number of fractional digits supported for
// weighed quantities.
const DefaultQtyPrecision = 3

// Mode selects how fractional line totals are snapped to whole currency units.
type Mode int

const (
	// ModeFloor truncates towards zero. This matches receipts that never
	// charge the customer a partially earned unit.
	ModeFloor Mode = iota
	// ModeNearest rounds half away from zero.
	ModeNearest
)

// ParseMode converts a configuration string into a rounding mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "floor":
		return ModeFloor, nil
	case "nearest", "round":
		return ModeNearest, nil
	default:
		return ModeFloor, fmt.Errorf("unrecognised rounding mode %q", value)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeNearest {
		return "nearest"
	}
	return "floor"
}

// Rules groups the numeric policies applied to every cart computation.
type Rules struct {
	QtyPrecision int
	Rounding     Mode
}

func (r Rules) precision() int {
	if r.QtyPrecision <= 0 {
		return DefaultQtyPrecision
	}
	return r.QtyPrecision
}

// Precision returns the effective quantity precision.
func (r Rules) Precision() int { return r.precision() }

// Factor returns 10^precision, used to snap quantities to the supported
// decimal resolution.
func (r Rules) Factor() float64 {
	return math.Pow(10, float64(r.precision()))
}

// QtyStep returns the smallest representable quantity increment.
func (r Rules) QtyStep() float64 {
	return 1 / r.Factor()
}

// SnapQty rounds a quantity to the nearest multiple of the minimum step.
func (r Rules) SnapQty(qty float64) float64 {
	factor := r.Factor()
	return math.Round(qty*factor) / factor
}

// Round converts a fractional currency amount to whole units using the
// configured mode. Results are clamped at zero.
func (r Rules) Round(value float64) Money {
	var rounded float64
	if r.Rounding == ModeNearest {
		rounded = math.Round(value)
	} else {
		rounded = math.Floor(value)
	}
	if rounded < 0 {
		return 0
	}
	return Money(rounded)
}

// LineSubtotal computes price times quantity with the quantity first snapped
// to precision and the result snapped to whole currency units. The two-stage
// rounding keeps line totals integral regardless of fractional quantities.
func (r Rules) LineSubtotal(unitPrice Money, qty float64) Money {
	return r.Round(float64(unitPrice) * r.SnapQty(qty))
}

// Subtotal sums already-rounded line totals. Summing rounded values rather
// than re-rounding a raw sum avoids cumulative drift.
func Subtotal(lines []Money) Money {
	var total Money
	for _, v := range lines {
		total += v
	}
	return total
}

// FormatQty renders a committed quantity without trailing zeros or a bare
// trailing decimal point.
func (r Rules) FormatQty(qty float64) string {
	text := strconv.FormatFloat(r.SnapQty(qty), 'f', r.precision(), 64)
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	if text == "" {
		return "0"
	}
	return text
}

// FormatAmount renders a monetary value as plain digits.
func FormatAmount(v Money) string {
	return strconv.FormatInt(v, 10)
}
