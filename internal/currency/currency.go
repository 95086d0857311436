package currency

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Pivot is the common currency every cross rate is routed through. It is also the
// settlement currency: payments always leave the portal denominated in it.
const Pivot = "ZAR"

// Demo rate table: units of pivot currency per one unit of the keyed currency.
var rates = map[string]decimal.Decimal{
	"ZAR": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("15.0"),
	"GBP": decimal.RequireFromString("20.7"),
	"EUR": decimal.RequireFromString("17.7"),
}

// UnknownCurrencyError reports a code missing from the rate table. Passing one is a
// caller contract violation, so it fails loudly instead of producing an unusable
// number.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency code %q", e.Code)
}

// Convert translates amount from one currency code to another through the pivot.
// The result is rounded once, half-even to 2 decimals, so displayed and submitted
// amounts can never drift by a cent. Converting a currency to itself returns the
// amount untouched.
func Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, ok := rates[from]
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Code: from}
	}
	toRate, ok := rates[to]
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Code: to}
	}

	if from == to {
		return amount, nil
	}

	var result decimal.Decimal
	switch {
	case from == Pivot:
		result = amount.Div(toRate)
	case to == Pivot:
		result = amount.Mul(fromRate)
	default:
		result = amount.Mul(fromRate).Div(toRate)
	}
	return result.RoundBank(2), nil
}

// Supported lists the currency codes present in the rate table, sorted.
func Supported() []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether code exists in the rate table.
func IsSupported(code string) bool {
	_, ok := rates[code]
	return ok
}
