// Package view shapes engine state for rendering and translates UI
// gestures into engine intents.
package view

import (
	"fmt"

	"github.com/shopspring/decimal"

	"go-currency-sync/domain"
	"go-currency-sync/engine"
)

// RateNote shown under the rate line.
const RateNote = "All figures are live mid-market rates, which are for informational purposes only. To see the rates for money transfer, please select sending money option."

// CurrencyOption one selectable currency with display metadata.
type CurrencyOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Data everything the screen needs to render one converter. Empty strings
// stand for hidden or empty fields.
type Data struct {
	SourceAmount   string           `json:"sourceAmount"`
	TargetAmount   string           `json:"targetAmount"`
	SourceCurrency string           `json:"sourceCurrency"`
	TargetCurrency string           `json:"targetCurrency"`
	SourceOptions  []CurrencyOption `json:"sourceOptions"`
	TargetOptions  []CurrencyOption `json:"targetOptions"`
	Rate           string           `json:"rate"`
	RateLine       string           `json:"rateLine"`
	RateNote       string           `json:"rateNote,omitempty"`
	Error          string           `json:"error,omitempty"`
	Live           bool             `json:"live"`
}

// Render shapes an engine snapshot for display. Amounts carry two decimal
// places and the rate five; the target amount and rate stay hidden until
// the first conversion has succeeded.
func Render(st engine.State) Data {
	d := Data{
		SourceCurrency: string(st.SourceCurrency),
		TargetCurrency: string(st.TargetCurrency),
		SourceOptions:  options(st.TargetCurrency),
		TargetOptions:  options(st.SourceCurrency),
		Error:          st.Err,
		Live:           st.Phase == engine.Live,
	}
	if st.SourceAmount != nil {
		d.SourceAmount = st.SourceAmount.StringFixed(2)
	}
	if !d.Live {
		return d
	}
	if st.TargetAmount != nil {
		d.TargetAmount = st.TargetAmount.StringFixed(2)
	}
	if st.Rate != nil {
		d.Rate = st.Rate.StringFixed(5)
		d.RateLine = fmt.Sprintf("1 %v = %v %v", st.SourceCurrency, d.Rate, st.TargetCurrency)
		d.RateNote = RateNote
	}
	return d
}

// options lists every currency except the one held by the opposite slot,
// so a selection can never collide with it.
func options(exclude domain.Currency) []CurrencyOption {
	opts := make([]CurrencyOption, 0, len(domain.Currencies)-1)
	for _, c := range domain.Currencies {
		if c == exclude {
			continue
		}
		opts = append(opts, CurrencyOption{Code: string(c), Name: c.Name()})
	}
	return opts
}

// Adapter forwards UI intents to a converter and renders its snapshots.
type Adapter struct {
	conv *engine.Converter
}

// NewAdapter wraps a converter.
func NewAdapter(conv *engine.Converter) *Adapter {
	return &Adapter{conv: conv}
}

// Render the current state.
func (a *Adapter) Render() Data {
	return Render(a.conv.Snapshot())
}

// SourceAmountChanged the user typed into the source field; nil clears it.
func (a *Adapter) SourceAmountChanged(value *decimal.Decimal) {
	a.conv.EditAmount(engine.Source, value)
}

// TargetAmountChanged the user typed into the target field; nil clears it.
func (a *Adapter) TargetAmountChanged(value *decimal.Decimal) {
	a.conv.EditAmount(engine.Target, value)
}

// SourceCurrencySelected applies a source selector choice. Picking the
// currency held by the other slot swaps the two slots: a two-slot
// assignment, never a collision.
func (a *Adapter) SourceCurrencySelected(code domain.Currency) {
	a.conv.SelectOrSwap(engine.Source, code)
}

// TargetCurrencySelected applies a target selector choice; see
// SourceCurrencySelected for the collision rule.
func (a *Adapter) TargetCurrencySelected(code domain.Currency) {
	a.conv.SelectOrSwap(engine.Target, code)
}

// Swapped the user pressed the swap arrows.
func (a *Adapter) Swapped() {
	a.conv.Swap()
}

// Submitted the user pressed the initial Convert button.
func (a *Adapter) Submitted() {
	a.conv.Submit()
}

// Close releases the underlying converter.
func (a *Adapter) Close() {
	a.conv.Close()
}
