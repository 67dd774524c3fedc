package render

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD formats an amount as dollars and cents, e.g. $10,000.00.
// Amounts with sub-cent digits are rounded half away from zero.
func USD(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}

// Price formats a quote price in dollars. Unlike USD it keeps every
// significant fractional digit beyond the cents, e.g. $333.3333.
func Price(amount decimal.Decimal) string {
	places := int32(2)
	if exp := -amount.Exponent(); exp > places {
		places = exp
	}
	for places > 2 && amount.Round(places-1).Equal(amount) {
		places--
	}

	f := *money.GetCurrency(money.USD).Formatter()
	f.Fraction = int(places)
	return f.Format(amount.Shift(places).IntPart())
}
