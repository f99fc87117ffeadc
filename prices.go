package dcadash

import (
	"sort"
	"time"
)

// PriceLookup resolves the price of a symbol, or reports that none is known.
type PriceLookup interface {
	PriceAsOf(symbol string) (Amount, bool)
}

// PriceBook indexes a price time series by symbol for point-in-time lookups.
// It is immutable once built and safe for concurrent reads.
type PriceBook struct {
	series map[string][]PricePoint // per symbol, sorted by time, input order kept for ties
	now    func() time.Time
}

// NewPriceBook builds a PriceBook from price points in any order.
func NewPriceBook(points []PricePoint) *PriceBook {
	b := &PriceBook{series: make(map[string][]PricePoint), now: time.Now}
	for _, p := range points {
		b.series[p.Symbol] = append(b.series[p.Symbol], p)
	}
	for _, s := range b.series {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
	}
	return b
}

// WithClock returns a copy of the book whose "current" lookups use now.
func (b *PriceBook) WithClock(now func() time.Time) *PriceBook {
	return &PriceBook{series: b.series, now: now}
}

// Len returns the number of price points in the book.
func (b *PriceBook) Len() int {
	n := 0
	for _, s := range b.series {
		n += len(s)
	}
	return n
}

// Symbols returns the priced symbols in alphabetical order.
func (b *PriceBook) Symbols() []string {
	symbols := make([]string, 0, len(b.series))
	for s := range b.series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// LatestAsOf returns the most recent price of symbol at or before cutoff, and false if
// there is none. Among points sharing the winning timestamp the first one read wins.
func (b *PriceBook) LatestAsOf(symbol string, cutoff time.Time) (Amount, bool) {
	p, ok := b.PointAsOf(symbol, cutoff)
	if !ok {
		return Zero, false
	}
	return p.Price, true
}

// PointAsOf is like LatestAsOf but returns the whole price point.
func (b *PriceBook) PointAsOf(symbol string, cutoff time.Time) (PricePoint, bool) {
	s := b.series[symbol]
	// first index strictly after the cutoff.
	i := sort.Search(len(s), func(i int) bool { return s[i].Time.After(cutoff) })
	if i == 0 {
		return PricePoint{}, false
	}
	i--
	for i > 0 && s[i-1].Time.Equal(s[i].Time) {
		i--
	}
	return s[i], true
}

// Latest returns the most recent known price regardless of staleness.
func (b *PriceBook) Latest(symbol string) (Amount, bool) {
	return b.LatestAsOf(symbol, b.now())
}

// PriceAsOf implements PriceLookup with "now" as the cutoff.
func (b *PriceBook) PriceAsOf(symbol string) (Amount, bool) { return b.Latest(symbol) }

// AsOf returns a PriceLookup pinned to cutoff.
func (b *PriceBook) AsOf(cutoff time.Time) PriceLookup {
	return cutoffLookup{book: b, cutoff: cutoff}
}

type cutoffLookup struct {
	book   *PriceBook
	cutoff time.Time
}

func (l cutoffLookup) PriceAsOf(symbol string) (Amount, bool) {
	return l.book.LatestAsOf(symbol, l.cutoff)
}
