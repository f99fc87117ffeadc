package dcadash

import (
	"fmt"
	"sort"
	"time"

	"github.com/etnz/dcadash/date"
	"github.com/montanaflynn/stats"
)

// ChartPoint is the state of the portfolio at the end of one calendar day.
type ChartPoint struct {
	Date         date.Date `json:"date"`
	Invested     Amount    `json:"invested"`
	MarketValue  Amount    `json:"marketValue"`
	UnrealizedPL Amount    `json:"unrealizedPL"`
	Timestamp    time.Time `json:"timestamp"` // noon UTC, for display
}

// BuildSeries replays the BUY transactions day by day and values the running
// positions at the end of each UTC day that has at least one purchase.
//
// The series is a pure function of its inputs: regenerating it from the same logs
// always yields the same points, and its last point equals the Portfolio computed by
// Replay and Valuate over the same data. An empty log yields an empty series. A nil
// book values every position as unpriced.
func BuildSeries(txs []Transaction, prices *PriceBook) []ChartPoint {
	if prices == nil {
		prices = NewPriceBook(nil)
	}
	buys := FilterTransactions(txs, BySide(Buy))
	sort.SliceStable(buys, func(i, j int) bool { return buys[i].Time.Before(buys[j].Time) })

	points := make([]ChartPoint, 0)
	acc := newAccumulator()
	for i := 0; i < len(buys); {
		day := date.Of(buys[i].Time)
		for ; i < len(buys) && date.Of(buys[i].Time) == day; i++ {
			acc.apply(buys[i])
		}
		p := Valuate(acc.replayed(), prices.AsOf(day.EndOfDay()))
		points = append(points, ChartPoint{
			Date:         day,
			Invested:     p.TotalQuoteInvested,
			MarketValue:  p.TotalMarketValue,
			UnrealizedPL: p.TotalUnrealizedPL,
			Timestamp:    day.Noon(),
		})
	}
	return points
}

// SeriesWindow is a trailing time window over a series.
type SeriesWindow string

const (
	Window24h SeriesWindow = "24h"
	Window7d  SeriesWindow = "7d"
	Window30d SeriesWindow = "30d"
	WindowAll SeriesWindow = "all"
)

// ParseSeriesWindow parses "24h", "7d", "30d" or "all". The empty string means "all".
func ParseSeriesWindow(s string) (SeriesWindow, error) {
	switch w := SeriesWindow(s); w {
	case Window24h, Window7d, Window30d, WindowAll:
		return w, nil
	case "":
		return WindowAll, nil
	default:
		return "", fmt.Errorf("unknown window %q want one of 24h, 7d, 30d, all", s)
	}
}

// Cutoff returns the earliest timestamp kept by the window, and false for "all".
func (w SeriesWindow) Cutoff(now time.Time) (time.Time, bool) {
	switch w {
	case Window24h:
		return now.Add(-24 * time.Hour), true
	case Window7d:
		return now.AddDate(0, 0, -7), true
	case Window30d:
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

// FilterWindow keeps the points whose display timestamp falls within the window.
func FilterWindow(points []ChartPoint, w SeriesWindow, now time.Time) []ChartPoint {
	cutoff, ok := w.Cutoff(now)
	if !ok {
		return points
	}
	kept := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		if !p.Timestamp.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}

// SeriesSummary describes a series at a glance.
type SeriesSummary struct {
	Days            int        `json:"days"` // number of points
	Range           date.Range `json:"range"`
	Last            ChartPoint `json:"last"`
	PeakMarketValue float64    `json:"peak_market_value"`
	LowestPL        float64    `json:"lowest_unrealized_pl"`
	HighestPL       float64    `json:"highest_unrealized_pl"`
	MeanPL          float64    `json:"mean_unrealized_pl"`
}

// SummarizeSeries computes summary statistics of a series, and false when it is empty.
// Statistics are descriptive only and computed in floating point.
func SummarizeSeries(points []ChartPoint) (SeriesSummary, bool) {
	if len(points) == 0 {
		return SeriesSummary{}, false
	}
	mv := make(stats.Float64Data, len(points))
	pl := make(stats.Float64Data, len(points))
	for i, p := range points {
		mv[i] = p.MarketValue.InexactFloat64()
		pl[i] = p.UnrealizedPL.InexactFloat64()
	}
	// errors only happen on empty input, which is excluded above.
	peak, _ := mv.Max()
	lowest, _ := pl.Min()
	highest, _ := pl.Max()
	mean, _ := pl.Mean()
	return SeriesSummary{
		Days:            len(points),
		Range:           date.Range{From: points[0].Date, To: points[len(points)-1].Date},
		Last:            points[len(points)-1],
		PeakMarketValue: peak,
		LowestPL:        lowest,
		HighestPL:       highest,
		MeanPL:          mean,
	}, true
}
