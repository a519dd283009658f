package input

import (
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/kasir-pos/internal/money"
)

// Field error messages surfaced next to the offending input. These are state,
// not Go errors: an invalid field blocks payment but never aborts anything.
const (
	MsgQtyRequired    = "quantity must be > 0"
	MsgQtyInvalid     = "invalid quantity"
	MsgQtyIntegerOnly = "integers only"
	MsgQtyPrecision   = "too many decimal digits"
	MsgPriceInvalid   = "price must be a number"
	MsgPriceNegative  = "invalid price"
	MsgPriceTooLarge  = "exceeds maximum"
)

// ParseQuantity converts quantity text into a committed value. The returned
// message is empty on success. On error the value is zero and the previous
// committed quantity should be kept.
func ParseQuantity(text string, allowDecimal bool, rules money.Rules) (float64, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "." {
		return 0, MsgQtyRequired
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, MsgQtyInvalid
	}
	if value <= 0 {
		return 0, MsgQtyRequired
	}
	if !allowDecimal && value != math.Trunc(value) {
		return 0, MsgQtyIntegerOnly
	}
	if frac := fractionDigits(trimmed); frac > rules.Precision() {
		return 0, MsgQtyPrecision
	}
	return rules.SnapQty(value), ""
}

// ParsePrice converts price-override text into a committed value. Empty text
// is valid and means "no override" (nil value). The returned message is empty
// on success.
func ParsePrice(text string, max money.Money) (*money.Money, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ""
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return nil, MsgPriceInvalid
	}
	if value < 0 {
		return nil, MsgPriceNegative
	}
	if max > 0 && value > float64(max) {
		return nil, MsgPriceTooLarge
	}
	price := money.Money(math.Round(value))
	return &price, ""
}

// ParseCash converts a sanitized cash digit string into a non-negative
// amount. Empty text counts as zero tendered.
func ParseCash(text string) money.Money {
	digits := digitsOnly(text)
	if digits == "" {
		return 0
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func fractionDigits(text string) int {
	idx := strings.IndexByte(text, '.')
	if idx < 0 {
		return 0
	}
	return len(text) - idx - 1
}
