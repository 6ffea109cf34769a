package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"

	"go-currency-sync/debounce"
	"go-currency-sync/domain"
	"go-currency-sync/limits"
	"go-currency-sync/transfergo"
)

// FetchFailedMessage shown when the rate lookup fails.
const FetchFailedMessage = "Failed to fetch exchange rate. Please try again."

// EmptyAmountMessage shown when the initial conversion is submitted without
// a usable amount.
const EmptyAmountMessage = "Amount cannot be empty or zero"

// Converter keeps the two amounts, the two currencies, the displayed rate
// and the error banner mutually consistent while either side is edited.
//
// The converter is the only writer of its State. Every intent runs to
// completion under one mutex, so each observes and produces a complete
// state; the only suspension point is the rate lookup itself, whose
// completion is re-admitted through the same mutex and a per-key request
// token. A completion that is not the most recently issued request for its
// key, or whose currency pair or direction no longer matches the on-screen
// state, is stale and discarded without touching state.
type Converter struct {
	rates      transfergo.Service
	limits     limits.Table
	dispatcher *debounce.Dispatcher
	logger     log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	st       State
	seq      uint64
	inflight map[string]uint64 // latest issued token per fetch key
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger attaches a logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithQuiet overrides the debounce quiet interval.
func WithQuiet(quiet time.Duration) Option {
	return func(c *Converter) { c.dispatcher = debounce.New(quiet) }
}

// WithAlwaysLive starts the converter in the Live phase: both fields
// synchronize from the first edit and no initial Convert action is needed.
func WithAlwaysLive() Option {
	return func(c *Converter) { c.st.Phase = Live }
}

// New constructs a Converter in its default state: 1 EUR -> GBP, awaiting
// the initial conversion.
func New(rates transfergo.Service, table limits.Table, opts ...Option) *Converter {
	ctx, cancel := context.WithCancel(context.Background())
	one := decimal.NewFromInt(1)
	c := &Converter{
		rates:      rates,
		limits:     table,
		dispatcher: debounce.New(debounce.DefaultQuiet),
		logger:     log.NewNopLogger(),
		ctx:        ctx,
		cancel:     cancel,
		st: State{
			SourceAmount:   &one,
			SourceCurrency: domain.EUR,
			TargetCurrency: domain.GBP,
			EditedSide:     Source,
			Phase:          Uninitialized,
		},
		inflight: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close drops pending dispatches and invalidates every in-flight fetch.
func (c *Converter) Close() {
	c.cancel()
	c.dispatcher.CancelAll()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = map[string]uint64{}
}

// Snapshot returns a copy of the current state. Decimal values are
// immutable, so sharing the pointed-to values is safe.
func (c *Converter) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// fetchRequest captures everything a rate lookup needs at the moment it is
// decided, so a completion applies the request it was issued for rather
// than whatever the state looks like on arrival.
type fetchRequest struct {
	from   domain.Currency
	to     domain.Currency
	amount decimal.Decimal
	side   Side
}

func editKey(side Side) string {
	return "edit:" + side.String()
}

// EditAmount records a value typed into side. A nil or zero value clears
// the whole form. An over-limit source value keeps the raw input on screen,
// raises the limit error and dispatches nothing.
func (c *Converter) EditAmount(side Side, value *decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value == nil || value.IsZero() {
		c.clearLocked()
		return
	}

	if c.st.Phase == Uninitialized && side == Target {
		// the target field is not live before the first conversion
		return
	}

	c.st.EditedSide = side

	if side == Source {
		if err := c.limits.Check(*value, c.st.SourceCurrency); err != nil {
			c.st.SourceAmount = value
			c.st.Err = err.Error()
			c.dispatcher.Cancel(editKey(side))
			delete(c.inflight, editKey(side))
			return
		}
	}

	c.st.Err = ""
	if side == Source {
		c.st.SourceAmount = value
	} else {
		c.st.TargetAmount = value
	}

	if c.st.Phase == Uninitialized {
		return
	}

	c.schedule(editKey(side), fetchRequest{
		from:   c.st.SourceCurrency,
		to:     c.st.TargetCurrency,
		amount: *value,
		side:   side,
	})
}

// SelectCurrency assigns currency to slot. Selecting the currency already
// held by the opposite slot is a no-op; SelectOrSwap turns that gesture
// into a swap instead.
func (c *Converter) SelectCurrency(slot Side, currency domain.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(slot, currency)
}

// Swap exchanges the two currencies and amounts in one step and re-derives
// the target side from the new source amount.
func (c *Converter) Swap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.swapLocked()
}

/// SelectOrSwap applies a currency selector gesture in one step: picking the
// currency held by the opposite slot swaps the two slots, any other known
// currency is assigned to slot. The decision and the transition happen
// under one lock, so the two slots can never collide.
func (c *Converter) SelectOrSwap(slot Side, currency domain.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !currency.Known() {
		return
	}
	if currency == c.otherLocked(slot) {
		c.swapLocked()
		return
	}
	c.selectLocked(slot, currency)
}

// otherLocked returns the currency held by the slot opposite to slot.
func (c *Converter) otherLocked(slot Side) domain.Currency {
	if slot == Target {
		return c.st.SourceCurrency
	}
	return c.st.TargetCurrency
}

func (c *Converter) selectLocked(slot Side, currency domain.Currency) {
	if !currency.Known() || currency == c.otherLocked(slot) {
		return
	}

	if slot == Source {
		c.st.SourceCurrency = currency
	} else {
		c.st.TargetCurrency = currency
	}

	c.rederiveLocked("select:" + slot.String())
}

func (c *Converter) swapLocked() {
	c.st.SourceCurrency, c.st.TargetCurrency = c.st.TargetCurrency, c.st.SourceCurrency
	c.st.SourceAmount, c.st.TargetAmount = c.st.TargetAmount, c.st.SourceAmount

	c.rederiveLocked("swap")
}

// rederiveLocked re-validates the source amount after a currency change and
// schedules a source-side fetch when there is something to convert.
// Currency changes always re-derive from the source side.
func (c *Converter) rederiveLocked(key string) {
	c.st.EditedSide = Source

	if c.st.SourceAmount == nil {
		return
	}
	if err := c.limits.Check(*c.st.SourceAmount, c.st.SourceCurrency); err != nil {
		c.st.Err = err.Error()
		return
	}
	c.st.Err = ""

	if c.st.Phase == Uninitialized {
		return
	}
	c.schedule(key, fetchRequest{
		from:   c.st.SourceCurrency,
		to:     c.st.TargetCurrency,
		amount: *c.st.SourceAmount,
		side:   Source,
	})
}

// Submit performs the one-time initial conversion. The fetch is immediate,
// not debounced, and runs in the calling goroutine; on success the
// converter moves to the Live phase.
func (c *Converter) Submit() {
	c.mu.Lock()
	if c.st.Phase != Uninitialized {
		c.mu.Unlock()
		return
	}
	if c.st.SourceAmount == nil || c.st.SourceAmount.IsZero() {
		c.st.Err = EmptyAmountMessage
		c.mu.Unlock()
		return
	}
	if err := c.limits.Check(*c.st.SourceAmount, c.st.SourceCurrency); err != nil {
		c.st.Err = err.Error()
		c.mu.Unlock()
		return
	}
	c.st.Err = ""
	c.st.EditedSide = Source
	req := fetchRequest{
		from:   c.st.SourceCurrency,
		to:     c.st.TargetCurrency,
		amount: *c.st.SourceAmount,
		side:   Source,
	}
	c.mu.Unlock()

	c.fetch("submit", req)
}

// clearLocked empties the form: both amounts, the rate and the error go,
// and every pending or in-flight fetch is invalidated.
func (c *Converter) clearLocked() {
	c.st.SourceAmount = nil
	c.st.TargetAmount = nil
	c.st.Rate = nil
	c.st.Err = ""
	c.dispatcher.CancelAll()
	c.inflight = map[string]uint64{}
}

// schedule queues req behind the quiet interval; the most recent call per
// key supersedes any earlier not-yet-fired one.
func (c *Converter) schedule(key string, req fetchRequest) {
	c.dispatcher.Call(key, func() {
		c.fetch(key, req)
	})
}

// fetch issues the rate lookup. The token taken at issue time is compared
// again on completion, so only the most recently issued request per key may
// mutate state.
func (c *Converter) fetch(key string, req fetchRequest) {
	c.mu.Lock()
	if c.st.Err != "" {
		// no fetch is dispatched while an error is showing
		c.mu.Unlock()
		return
	}
	c.seq++
	token := c.seq
	c.inflight[key] = token
	c.mu.Unlock()

	c.logger.Log("msg", "fetching rate",
		"from", req.from,
		"to", req.to,
		"amount", req.amount,
		"side", req.side,
		"token", token,
	)

	amount := req.amount
	quote, err := c.rates.FxRate(c.ctx, req.from, req.to, &amount)
	c.apply(key, token, req, quote, err)
}

// apply folds a fetch completion into the state.
func (c *Converter) apply(key string, token uint64, req fetchRequest, quote domain.Quote, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key] != token {
		c.logger.Log("msg", "discarding stale response", "key", key, "token", token)
		return
	}
	delete(c.inflight, key)

	// the token only orders requests within one key; the state may still
	// have moved on through another intent while this request was in
	// flight. A quote for a different pair or direction than the one on
	// screen no longer describes anything the user is looking at.
	if req.side != c.st.EditedSide || req.from != c.st.SourceCurrency || req.to != c.st.TargetCurrency {
		c.logger.Log("msg", "discarding superseded response", "key", key, "token", token)
		return
	}

	if err != nil {
		// keep the last good rate and amounts on screen, only surface the failure
		c.st.Err = FetchFailedMessage
		c.logger.Log("msg", "rate fetch failed", "error", err)
		return
	}

	rate := quote.Rate
	c.st.Rate = &rate

	if req.side == Source {
		// prefer the server-computed amount over re-deriving from the raw
		// rate, which can diverge by a rounding step
		converted := quote.ToAmount
		if converted == nil {
			product := req.amount.Mul(rate)
			converted = &product
		}
		rounded := converted.Round(2)
		c.st.TargetAmount = &rounded
	} else {
		derived := req.amount.Div(rate).Round(2)
		if err := c.limits.Check(derived, c.st.SourceCurrency); err != nil {
			// the derived source amount is over the ceiling: keep the prior
			// source value and show the violation instead
			c.st.Err = err.Error()
			return
		}
		c.st.SourceAmount = &derived
	}

	c.st.Err = ""
	if c.st.Phase == Uninitialized {
		c.st.Phase = Live
	}
}
