package dcadash

import "time"

// Holding is a Position valued at a market price.
type Holding struct {
	Position
	Price        Amount `json:"price"`
	MarketValue  Amount `json:"market_value"`
	UnrealizedPL Amount `json:"unrealized_pl"`
	// Priced is false when no price is known for the symbol: Price, MarketValue and
	// UnrealizedPL are then zero and mean "no market data", not a total loss.
	Priced bool `json:"priced"`
}

// PLPercent returns the unrealized P/L as a percentage of the cost basis.
func (h Holding) PLPercent() Percent { return PercentChange(h.MarketValue, h.TotalCost) }

// Portfolio is the valued state of the whole portfolio. It is built fresh on every
// query and never mutated afterwards.
type Portfolio struct {
	QuoteCurrency      string              `json:"base_currency"`
	TotalQuoteInvested Amount              `json:"total_quote_invested"`
	TotalMarketValue   Amount              `json:"total_market_value"`
	TotalUnrealizedPL  Amount              `json:"total_unrealized_pl"`
	Holdings           []Holding           `json:"positions"`
	LastUpdated        time.Time           `json:"last_updated"`
	Warnings           []StalePriceWarning `json:"warnings,omitempty"`
}

// PLPercent returns the total unrealized P/L as a percentage of the priced cost basis.
func (p *Portfolio) PLPercent() Percent {
	cost := Zero
	for _, h := range p.Holdings {
		if h.Priced {
			cost = cost.Add(h.TotalCost)
		}
	}
	return PercentChange(p.TotalMarketValue, cost)
}

// Holding returns the holding of symbol.
func (p *Portfolio) Holding(symbol string) (Holding, bool) {
	for _, h := range p.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}

// Valuate values replayed positions with prices.
//
// Totals are the sum of the already rounded per-holding figures, so that the displayed
// total always equals the sum of the displayed lines. Unpriced holdings contribute
// nothing to the market value nor to the unrealized P/L.
func Valuate(r *Replayed, prices PriceLookup) *Portfolio {
	p := &Portfolio{
		QuoteCurrency:      r.QuoteCurrency,
		TotalQuoteInvested: r.TotalQuoteInvested,
		Holdings:           make([]Holding, 0, len(r.Positions)),
		LastUpdated:        r.LastTransaction,
	}
	for _, pos := range r.Positions {
		h := value(pos, prices)
		if !h.Priced {
			p.Warnings = append(p.Warnings, StalePriceWarning{Symbol: pos.Symbol})
		}
		p.TotalMarketValue = p.TotalMarketValue.Add(h.MarketValue)
		p.TotalUnrealizedPL = p.TotalUnrealizedPL.Add(h.UnrealizedPL)
		p.Holdings = append(p.Holdings, h)
	}
	return p
}

func value(pos Position, prices PriceLookup) Holding {
	price, ok := prices.PriceAsOf(pos.Symbol)
	if !ok {
		return Holding{Position: pos}
	}
	mv := pos.OpenQuantity.Mul(price)
	return Holding{
		Position:     pos,
		Price:        price,
		MarketValue:  mv,
		UnrealizedPL: mv.Sub(pos.TotalCost),
		Priced:       true,
	}
}
