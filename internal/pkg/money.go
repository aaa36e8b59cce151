package pkg

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMinorUnits formata um valor em centavos, ex.: 6050, "usd" -> "60.50 USD".
func FormatMinorUnits(amount int64, currency string) string {
	value := decimal.New(amount, -2).StringFixed(2)
	if currency == "" {
		return value
	}
	return value + " " + strings.ToUpper(currency)
}

// Truncate corta s em no maximo limit runes, terminando com "..." quando corta.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
