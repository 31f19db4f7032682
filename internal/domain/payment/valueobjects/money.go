package valueobjects

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in the smallest currency unit.
type Money struct {
	amount   int64
	currency string
}

// NewMoney validates the currency against ISO 4217 and upper-cases it.
func NewMoney(amount int64, code string) (Money, error) {
	cur, err := NormalizeCurrency(code)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// NormalizeCurrency upper-cases code and checks it is a known ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// MinorUnitScale returns the number of decimal places for a currency, e.g.
// 2 for EUR and 0 for JPY. Unknown codes default to 2.
func MinorUnitScale(code string) int32 {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// MinorToMajor converts 1050 EUR cents to 10.50.
func MinorToMajor(amount int64, code string) decimal.Decimal {
	return decimal.New(amount, -MinorUnitScale(code))
}

// MajorToMinor converts a provider decimal string such as "10.50" to minor
// units, rounding half away from zero.
func MajorToMinor(value string, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid decimal amount %q: %w", value, err)
	}
	return d.Shift(MinorUnitScale(code)).Round(0).IntPart(), nil
}

// FormatMajor renders a minor amount as a fixed-point string with the
// currency's scale, e.g. "10.50" or "1000".
func FormatMajor(amount int64, code string) string {
	return MinorToMajor(amount, code).StringFixed(MinorUnitScale(code))
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) Major() decimal.Decimal {
	return MinorToMajor(m.amount, m.currency)
}

func (m Money) IsPositive() bool {
	return m.amount > 0
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", FormatMajor(m.amount, m.currency), m.currency)
}
