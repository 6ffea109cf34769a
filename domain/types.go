package domain

import "github.com/shopspring/decimal"

// Currency a currency code from the closed set supported by the converter.
type Currency string

const (
	PLN Currency = "PLN"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	UAH Currency = "UAH"
)

// Currencies all supported currencies, in display order.
var Currencies = []Currency{PLN, EUR, GBP, UAH}

var names = map[Currency]string{
	PLN: "Polish Zloty",
	EUR: "Euro",
	GBP: "British Pound",
	UAH: "Ukrainian Hryvnia",
}

// Name a human readable currency name for selector rendering.
func (c Currency) Name() string {
	return names[c]
}

// Known reports whether c is one of the supported currencies.
func (c Currency) Known() bool {
	_, ok := names[c]
	return ok
}

// Quote the result of a rate lookup.
type Quote struct {
	// Rate units of target currency per one unit of source currency
	Rate decimal.Decimal

	// ToAmount server-computed converted amount, nil when the lookup was rate-only
	ToAmount *decimal.Decimal
}
