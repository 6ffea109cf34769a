package engine

import (
	"github.com/shopspring/decimal"

	"go-currency-sync/domain"
)

// Side identifies one of the two amount fields.
type Side int

const (
	// Source the field holding the currency converted from
	Source Side = iota
	// Target the field holding the currency converted to
	Target
)

func (s Side) String() string {
	if s == Target {
		return "target"
	}
	return "source"
}

// Phase whether the first conversion has succeeded yet.
type Phase int

const (
	// Uninitialized no conversion has succeeded; only the source side is live
	Uninitialized Phase = iota
	// Live both fields synchronize continuously
	Live
)

func (p Phase) String() string {
	if p == Live {
		return "live"
	}
	return "uninitialized"
}

// State a snapshot of one converter. Nil amounts mean an empty field; an
// empty Err means no error is showing. Readers receive copies and must not
// treat a snapshot as live.
type State struct {
	SourceAmount   *decimal.Decimal
	TargetAmount   *decimal.Decimal
	SourceCurrency domain.Currency
	TargetCurrency domain.Currency
	EditedSide     Side
	Rate           *decimal.Decimal
	Err            string
	Phase          Phase
}
