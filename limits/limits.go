package limits

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"go-currency-sync/domain"
)

// Table maps a currency to the maximum amount that may be converted from it.
type Table map[domain.Currency]decimal.Decimal

// Default returns the built-in transfer ceilings.
func Default() Table {
	return Table{
		domain.PLN: decimal.NewFromInt(20000),
		domain.EUR: decimal.NewFromInt(5000),
		domain.GBP: decimal.NewFromInt(1000),
		domain.UAH: decimal.NewFromInt(50000),
	}
}

// Error reports an amount over the ceiling for its currency.
type Error struct {
	Currency domain.Currency
	Limit    decimal.Decimal
}

func (e *Error) Error() string {
	return fmt.Sprintf("Amount exceeds limit for %v: %v", e.Currency, e.Limit)
}

// Check validates amount against the ceiling for currency. Currencies
// without a configured ceiling always pass.
func (t Table) Check(amount decimal.Decimal, currency domain.Currency) error {
	limit, ok := t[currency]
	if !ok {
		return nil
	}
	if amount.GreaterThan(limit) {
		return &Error{Currency: currency, Limit: limit}
	}
	return nil
}

// LoadFile overlays ceilings from a YAML file onto the defaults.
// The file maps currency codes to decimal ceilings, e.g. `EUR: 7500`.
func LoadFile(path string) (Table, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading limits file: %w", err)
	}

	// Scalars are kept as raw yaml nodes so that both quoted and bare
	// numbers parse through decimal without a float64 round trip.
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("decoding limits yaml: %w", err)
	}

	table := Default()
	for code, node := range raw {
		currency := domain.Currency(code)
		if !currency.Known() {
			return nil, fmt.Errorf("unknown currency in limits file: %v", code)
		}
		limit, err := decimal.NewFromString(node.Value)
		if err != nil {
			return nil, fmt.Errorf("bad limit for %v: %w", code, err)
		}
		table[currency] = limit
	}
	return table, nil
}
