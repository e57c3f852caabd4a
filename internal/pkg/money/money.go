// Package money handles donation amounts as integer euro cents and the
// French 66% tax-deduction arithmetic derived from them.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// taxRatePercent is the deductible share of a donation under article 200 CGI.
const taxRatePercent = 66

// ParseAmount converts a decimal euro string ("50", "50.5", "50.00") into
// cents. At most two decimal places are accepted. Negative amounts and
// malformed input are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("amount must be an unsigned decimal number")
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount has more than two decimal places")
	}
	// Pad "5" to "50" so cents scale correctly.
	for len(frac) < 2 {
		frac += "0"
	}

	euros, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents64, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return euros*100 + cents64, nil
}

// FormatCents renders cents as a two-decimal euro string, e.g. 5000 -> "50.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// TaxBenefit returns the deductible part of a donation, in cents. The 66%
// figure is rounded half away from zero to a whole euro, which matches what
// the receipt document and the dashboard previews both display.
func TaxBenefit(amountCents int64) int64 {
	n := amountCents * taxRatePercent
	const denom = 10000 // percent * cents-per-euro
	euros := n / denom
	if (n%denom)*2 >= denom {
		euros++
	}
	return euros * 100
}

// RealCost is the out-of-pocket part of a donation after the tax benefit.
// RealCost + TaxBenefit always equals the amount exactly.
func RealCost(amountCents int64) int64 {
	return amountCents - TaxBenefit(amountCents)
}
