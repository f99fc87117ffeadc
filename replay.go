package dcadash

import "time"

// Position is the aggregated holding of one symbol, derived from its purchases.
type Position struct {
	Symbol       string `json:"symbol"`
	OpenQuantity Amount `json:"open_quantity"`
	TotalCost    Amount `json:"total_cost"`
	AvgCost      Amount `json:"avg_cost"` // zero when OpenQuantity is zero
}

// Replayed is the state of the portfolio reconstructed from the transaction log alone,
// without any market data.
type Replayed struct {
	QuoteCurrency      string     `json:"base_currency"`
	TotalQuoteInvested Amount     `json:"total_quote_invested"`
	Positions          []Position `json:"positions"` // first-seen symbol order
	LastTransaction    time.Time  `json:"last_transaction_time,omitempty"`
}

// Replay folds a transaction log into per-symbol positions.
//
// Only BUY transactions accumulate. SELL transactions are read but never reduce
// quantity nor cost basis: the dashboard tracks a buy-only DCA bot.
// The input order does not matter for the totals.
func Replay(txs []Transaction) (*Replayed, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyLog
	}
	acc := newAccumulator()
	for _, tx := range txs {
		acc.apply(tx)
	}
	return acc.replayed(), nil
}

// accumulator holds the running totals of a replay. Replay and BuildSeries share it so
// that both produce exactly the same figures.
type accumulator struct {
	order    []string // symbols in first-seen order
	qty      map[string]Amount
	cost     map[string]Amount
	invested Amount
	quote    string
	quoteAt  time.Time // time of the BUY that set quote
	last     time.Time
}

func newAccumulator() *accumulator {
	return &accumulator{
		qty:   make(map[string]Amount),
		cost:  make(map[string]Amount),
		quote: DefaultQuoteCurrency,
	}
}

// apply accumulates a single transaction, ignoring anything but BUY.
func (a *accumulator) apply(tx Transaction) {
	if !tx.IsBuy() {
		return
	}
	a.invested = a.invested.Add(tx.QuoteSpent)
	// the most recent BUY wins: a portfolio mixing quote currencies is mislabelled.
	if q, ok := QuoteCurrency(tx.Symbol); ok && !tx.Time.Before(a.quoteAt) {
		a.quote = q
		a.quoteAt = tx.Time
	}
	if tx.Time.After(a.last) {
		a.last = tx.Time
	}
	if _, seen := a.qty[tx.Symbol]; !seen {
		a.order = append(a.order, tx.Symbol)
	}
	a.qty[tx.Symbol] = a.qty[tx.Symbol].Add(tx.Quantity)
	a.cost[tx.Symbol] = a.cost[tx.Symbol].Add(tx.QuoteSpent)
}

// positions returns a fresh copy of the running positions.
func (a *accumulator) positions() []Position {
	positions := make([]Position, 0, len(a.order))
	for _, symbol := range a.order {
		qty, cost := a.qty[symbol], a.cost[symbol]
		positions = append(positions, Position{
			Symbol:       symbol,
			OpenQuantity: qty,
			TotalCost:    cost,
			AvgCost:      cost.Div(qty),
		})
	}
	return positions
}

func (a *accumulator) replayed() *Replayed {
	return &Replayed{
		QuoteCurrency:      a.quote,
		TotalQuoteInvested: a.invested,
		Positions:          a.positions(),
		LastTransaction:    a.last,
	}
}
