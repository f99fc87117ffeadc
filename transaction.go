package dcadash

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Transaction is a single trade as logged by the bot in transactions.ndjson.
// Transactions are immutable once logged.
type Transaction struct {
	Time       time.Time `json:"ts"`
	Symbol     string    `json:"symbol"` // trading pair, e.g. "BTCUSDC"
	Side       Side      `json:"side"`
	Price      Amount    `json:"price"`       // unit price in quote currency
	Quantity   Amount    `json:"qty"`         // base asset traded
	QuoteSpent Amount    `json:"quote_spent"` // authoritative over Price*Quantity, may include fees

	Exchange         string `json:"exchange,omitempty"`
	OrderType        string `json:"order_type,omitempty"`
	IterationID      string `json:"iteration_id,omitempty"`
	FiltersValidated *bool  `json:"filters_validated,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// UnmarshalJSON decodes a transaction and rejects records missing their identity
// fields, so that they are reported as malformed lines.
func (tx *Transaction) UnmarshalJSON(b []byte) error {
	type jtransaction Transaction // no methods, no recursion
	var j jtransaction
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	switch {
	case j.Time.IsZero():
		return errors.New("missing property \"ts\"")
	case j.Symbol == "":
		return errors.New("missing property \"symbol\"")
	case j.Side == "":
		return errors.New("missing property \"side\"")
	}
	j.Time = j.Time.UTC()
	j.Side = Side(strings.ToUpper(string(j.Side)))
	*tx = Transaction(j)
	return nil
}

// IsBuy reports whether the transaction accumulates into a position.
func (tx Transaction) IsBuy() bool { return tx.Side == Buy }

// PricePoint is a market price observation from prices.ndjson.
type PricePoint struct {
	Time        time.Time `json:"ts"`
	Symbol      string    `json:"symbol"`
	Price       Amount    `json:"price"`
	Source      string    `json:"source,omitempty"`
	IterationID string    `json:"iteration_id,omitempty"`
}

// UnmarshalJSON decodes a price point and rejects records without time or symbol.
func (p *PricePoint) UnmarshalJSON(b []byte) error {
	type jprice PricePoint
	var j jprice
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	if j.Time.IsZero() {
		return errors.New("missing property \"ts\"")
	}
	if j.Symbol == "" {
		return errors.New("missing property \"symbol\"")
	}
	j.Time = j.Time.UTC()
	*p = PricePoint(j)
	return nil
}

// Iteration is one run of the bot, from iterations.ndjson. Not used by the engine.
type Iteration struct {
	ID           string     `json:"iteration_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	AssetsTotal  *int       `json:"assets_total,omitempty"`
	BuysExecuted *int       `json:"buys_executed,omitempty"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
}

// PositionsSnapshot is the legacy pre-computed snapshot in positions_current.json.
type PositionsSnapshot struct {
	UpdatedAt          string             `json:"updated_at"`
	BaseCurrency       string             `json:"base_currency"`
	TotalQuoteInvested Amount             `json:"total_quote_invested"`
	Positions          []SnapshotPosition `json:"positions"`
}

// SnapshotPosition is a position line of the legacy snapshot. Older writers used
// "open_qty" as a number, newer ones "open_quantity" as a string.
type SnapshotPosition struct {
	Symbol       string   `json:"symbol"`
	OpenQuantity *Amount  `json:"open_quantity,omitempty"`
	OpenQty      *float64 `json:"open_qty,omitempty"`
	TotalCost    Amount   `json:"total_cost"`
	AvgCost      *Amount  `json:"avg_cost,omitempty"`
	Price        *Amount  `json:"price,omitempty"`
	MarketValue  *Amount  `json:"market_value,omitempty"`
	UnrealizedPL *Amount  `json:"unrealized_pl,omitempty"`
}

// Quantity returns the open quantity whichever field carried it.
func (p SnapshotPosition) Quantity() Amount {
	switch {
	case p.OpenQuantity != nil:
		return *p.OpenQuantity
	case p.OpenQty != nil:
		return A(*p.OpenQty)
	default:
		return Zero
	}
}

// quote currencies recognized as symbol suffixes.
var quoteCurrencies = []string{"USDC", "USDT"}

// DefaultQuoteCurrency labels a portfolio when no transaction tells otherwise.
const DefaultQuoteCurrency = "USDC"

// QuoteCurrency returns the settlement currency encoded as the symbol suffix, and false
// when the suffix is not a known quote currency.
func QuoteCurrency(symbol string) (string, bool) {
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(symbol, q) {
			return q, true
		}
	}
	return "", false
}

// BaseAsset returns the traded asset of a symbol, e.g. "BTC" for "BTCUSDC".
// The symbol is returned unchanged when its quote currency is unknown.
func BaseAsset(symbol string) string {
	if q, ok := QuoteCurrency(symbol); ok {
		return strings.TrimSuffix(symbol, q)
	}
	return symbol
}

func (tx Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s (%s)", tx.Time.Format(time.RFC3339), tx.Side, tx.Quantity, tx.Symbol, tx.Price, tx.QuoteSpent)
}
