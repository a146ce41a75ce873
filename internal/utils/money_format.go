package utils

import (
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount for notification text, e.g. "1 500.50 CDF".
// Whole amounts drop their fractional part.
func FormatAmount(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	if amount.Equal(amount.Truncate(0)) {
		s = amount.Truncate(0).String()
	}
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	sign := ""
	if len(intPart) > 0 && intPart[0] == '-' {
		sign, intPart = "-", intPart[1:]
	}
	grouped := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, intPart[i])
	}
	out := sign + string(grouped) + frac
	if currency != "" {
		out += " " + currency
	}
	return out
}
