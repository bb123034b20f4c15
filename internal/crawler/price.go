package crawler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParsePrice reads the first number in a price label such as "15,99 €"
// or "1 234.50 EUR". A decimal comma is normalised to a period; when both
// separators appear, the last one is the decimal separator.
func ParsePrice(text string) (decimal.Decimal, error) {
	number := strings.TrimRight(firstNumber(text), ".,")
	if number == "" {
		return decimal.Zero, fmt.Errorf("no number in price %q", text)
	}

	price, err := decimal.NewFromString(normalizeSeparators(number))
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed price %q: %w", text, err)
	}
	return price, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// firstNumber returns the first run of digits and separators. Whitespace
// between digits is treated as thousands grouping and dropped.
func firstNumber(text string) string {
	runes := []rune(text)

	var b strings.Builder
	for i, r := range runes {
		switch {
		case isDigit(r):
			b.WriteRune(r)
		case r == '.' || r == ',':
			if b.Len() > 0 || (i+1 < len(runes) && isDigit(runes[i+1])) {
				b.WriteRune(r)
			}
		case unicode.IsSpace(r) && b.Len() > 0:
			if i+1 < len(runes) && isDigit(runes[i+1]) {
				continue
			}
			return b.String()
		default:
			if b.Len() > 0 {
				return b.String()
			}
		}
	}
	return b.String()
}

func normalizeSeparators(number string) string {
	lastDot := strings.LastIndex(number, ".")
	lastComma := strings.LastIndex(number, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		number = strings.ReplaceAll(number, ".", "")
		return strings.ReplaceAll(number, ",", ".")
	case lastDot >= 0 && lastComma >= 0:
		return strings.ReplaceAll(number, ",", "")
	case lastComma >= 0:
		return strings.ReplaceAll(number, ",", ".")
	default:
		return number
	}
}
