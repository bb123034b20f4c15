package crawler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{"15 €", "15"},
		{"15,99 €", "15.99"},
		{"15.99 EUR", "15.99"},
		{"€ 7,5", "7.5"},
		{"1 234,56 €", "1234.56"},
		{"1\u00a0234,56\u00a0€", "1234.56"},
		{"1.234,56 €", "1234.56"},
		{"1,234.56 €", "1234.56"},
		{"Kaina: 20 € + 5 € pristatymas", "20"},
		{"20.", "20"},
	}

	for _, tc := range testCases {
		price, err := ParsePrice(tc.text)
		if assert.NoError(t, err, tc.text) {
			assert.True(t, price.Equal(decimal.RequireFromString(tc.expected)),
				"%q parsed as %s, want %s", tc.text, price, tc.expected)
		}
	}
}

func TestParsePriceInvalid(t *testing.T) {
	for _, text := range []string{"", "price on request", "€", "1.2.3 €", "..,"} {
		_, err := ParsePrice(text)
		assert.Error(t, err, text)
	}
}
