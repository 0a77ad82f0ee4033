package store

import (
	"strconv"
	"strings"
)

// Defaults applied when a sheet cell cannot be coerced. Prices always fall
// back to zero rather than any per-book guess.
const (
	DefaultPrice = 0.0
	DefaultStock = 1
)

var currencyReplacer = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
)

// ParsePrice coerces heterogeneous textual price input into a non-negative
// float. Currency symbols and thousands separators are stripped first; if a
// straight parse fails, the first numeric substring is used; if nothing
// numeric is present the result is DefaultPrice. Never fails.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(currencyReplacer.Replace(raw))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return clampPrice(v)
	}
	if sub := firstNumber(s); sub != "" {
		if v, err := strconv.ParseFloat(sub, 64); err == nil {
			return clampPrice(v)
		}
	}
	return DefaultPrice
}

func clampPrice(v float64) float64 {
	if v < 0 {
		return DefaultPrice
	}
	return v
}

// firstNumber extracts the first run of digits, with at most one decimal
// point, from s.
func firstNumber(s string) string {
	start := -1
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if start < 0 {
				start = i
			}
		case r == '.' && start >= 0 && !dot:
			dot = true
		default:
			if start >= 0 {
				return strings.TrimSuffix(s[start:i], ".")
			}
		}
	}
	if start >= 0 {
		return strings.TrimSuffix(s[start:], ".")
	}
	return ""
}

// ParseStock coerces a stock-quantity cell into a non-negative int,
// defaulting to DefaultStock when unparseable. Never fails.
func ParseStock(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultStock
	}
	if n < 0 {
		return 0
	}
	return n
}

// parseQuantity is ParseStock with a zero default, for order rows where an
// absent quantity must not invent stock.
func parseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
