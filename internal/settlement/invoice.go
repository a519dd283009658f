package settlement

import (
	"fmt"
	"time"
)

// invoiceTimestampWidth keeps the full second-resolution timestamp so the
// random suffix only has to disambiguate sales confirmed within one second.
const invoiceTimestampWidth = 14

// NewInvoiceNumber builds an invoice identifier from a prefix, a compact
// timestamp, and a random numeric suffix for same-second disambiguation.
// Uniqueness is best effort here; the payments table enforces it with a
// unique index as the backstop.
func NewInvoiceNumber(prefix string, ts time.Time, randInt func(int) int) string {
	compact := ts.Format("20060102150405")
	if len(compact) > invoiceTimestampWidth {
		compact = compact[:invoiceTimestampWidth]
	}
	suffix := 0
	if randInt != nil {
		suffix = randInt(1000)
	}
	return fmt.Sprintf("%s%s%03d", prefix, compact, suffix)
}
