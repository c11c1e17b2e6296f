// Package money formats VND amounts. VND has no minor unit, so amounts are
// whole dong in int64 everywhere.
package money

import (
	"strconv"
	"strings"
)

// FormatVND renders 1250000 as "1.250.000 ₫"
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" ₫")
	return b.String()
}
