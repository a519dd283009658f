// Package input turns raw keypad text into committed numeric values.
// Sanitizers silently drop malformed characters; validators convert the
// sanitized text into a domain value or a field-level error message.
package input

import "strings"

// SanitizeQuantity limits raw quantity text to the characters a committed
// quantity can contain. Whole-unit lines keep digits only. Decimal lines keep
// digits plus a single decimal point, with the fraction truncated to the
// supported precision. A leading "." is preserved so partially typed values
// such as ".5" still parse.
func SanitizeQuantity(raw string, allowDecimal bool, precision int) string {
	if !allowDecimal {
		return digitsOnly(raw)
	}
	var intPart, fracPart strings.Builder
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if seenDot {
				fracPart.WriteRune(r)
			} else {
				intPart.WriteRune(r)
			}
		case r == '.':
			// Collapse repeated dots: keep the first, later digit groups
			// join the fraction.
			seenDot = true
		}
	}
	if !seenDot {
		return intPart.String()
	}
	frac := fracPart.String()
	if precision > 0 && len(frac) > precision {
		frac = frac[:precision]
	}
	return intPart.String() + "." + frac
}

// SanitizePrice strips everything but digits. Prices are whole currency
// units; there is no fractional part to preserve.
func SanitizePrice(raw string) string {
	return digitsOnly(raw)
}

// SanitizeCash strips everything but digits. Cash tendered is tracked as a
// raw digit string to avoid locale ambiguity.
func SanitizeCash(raw string) string {
	return digitsOnly(raw)
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
