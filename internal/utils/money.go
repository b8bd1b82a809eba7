package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatTHB renders an amount as "THB 12,300.00".
func FormatTHB(amount decimal.Decimal) string {
	return "THB " + FormatAmount(amount)
}

// FormatAmount renders a decimal with thousand separators and two decimals.
func FormatAmount(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}
	s := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatQuantity drops the trailing ".00" when the value is integral.
func FormatQuantity(q decimal.Decimal) string {
	if q.IsInteger() {
		return groupThousands(q.StringFixed(0))
	}
	return FormatAmount(q)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	for i, c := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}

// ParseAmount parses "12,300.00" or "THB 12300" into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "THB")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		s = "0"
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}
