package renderer

import (
	"io/fs"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) dcadash.Amount { return dcadash.MustParseAmount(s) }

func samplePortfolio() *dcadash.Portfolio {
	r, err := dcadash.Replay([]dcadash.Transaction{
		{Time: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Symbol: "BTCUSDC", Side: dcadash.Buy, Price: amount("50000"), Quantity: amount("0.01"), QuoteSpent: amount("500")},
		{Time: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Symbol: "BTCUSDC", Side: dcadash.Buy, Price: amount("60000"), Quantity: amount("0.01"), QuoteSpent: amount("600")},
		{Time: time.Date(2025, 1, 2, 10, 5, 0, 0, time.UTC), Symbol: "PEPEUSDC", Side: dcadash.Buy, Price: amount("0.00001"), Quantity: amount("1000000"), QuoteSpent: amount("10")},
	})
	if err != nil {
		panic(err)
	}
	book := dcadash.NewPriceBook([]dcadash.PricePoint{{Time: time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), Symbol: "BTCUSDC", Price: amount("58000")}})
	return dcadash.Valuate(r, book.AsOf(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)))
}

// TestTemplatesParse checks every embedded template parses with the helper functions.
func TestTemplatesParse(t *testing.T) {
	files, err := fs.Glob(templates, "templates/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := fs.ReadFile(templates, file)
			require.NoError(t, err)
			_, err = template.New(file).Funcs(funcs).Parse(string(content))
			assert.NoError(t, err)
		})
	}
}

func TestMoney(t *testing.T) {
	testCases := []struct {
		amount   string
		currency string
		want     string
		signed   string
	}{
		{"1160", "USDC", "1,160.00 USDC", "+1,160.00 USDC"},
		{"-60.005", "USDT", "-60.01 USDT", "-60.01 USDT"},
		{"0.004", "USDC", "0.00 USDC", "-"},
		{"0", "USDC", "0.00 USDC", "-"},
		{"1234567.891", "USD", "$1,234,567.89", "+$1,234,567.89"},
		{"12.5", "FDUSD", "12.50 FDUSD", "+12.50 FDUSD"},
	}
	for _, tc := range testCases {
		t.Run(tc.amount+tc.currency, func(t *testing.T) {
			assert.Equal(t, tc.want, Money(amount(tc.amount), tc.currency))
			assert.Equal(t, tc.signed, SignedMoney(amount(tc.amount), tc.currency))
		})
	}
}

func TestRenderPortfolio(t *testing.T) {
	got := RenderPortfolio(samplePortfolio(), PortfolioRenderOptions{})
	assert.NotContains(t, got, "error")
	for _, want := range []string{
		"# Portfolio on Jan 02, 2025 10:05",
		"| Total Invested | 1,110.00 USDC |",
		"| Market Value | 1,160.00 USDC |",
		"| Unrealized P/L | +60.00 USDC (+5.45%) |",
		"| BTCUSDC | 0.020000 | 55,000.00 USDC | 1,100.00 USDC | 58,000.00 USDC | 1,160.00 USDC | +60.00 USDC (+5.45%) |",
		"| PEPEUSDC | 1000000.000000 | 0.00 USDC | 10.00 USDC | - | - | - |",
		"## Warnings",
		"- no price available for PEPEUSDC",
	} {
		assert.Contains(t, got, want)
	}

	short := RenderPortfolio(samplePortfolio(), PortfolioRenderOptions{SkipPositions: true})
	assert.NotContains(t, short, "## Positions")
	assert.Contains(t, short, "## Warnings")
}

func TestRenderPortfolio_NoPosition(t *testing.T) {
	got := RenderPortfolio(&dcadash.Portfolio{QuoteCurrency: "USDC"}, PortfolioRenderOptions{})
	assert.Contains(t, got, "No position yet.")
	assert.NotContains(t, got, "Warnings")
	assert.NotContains(t, got, " on ")
}

func TestRenderSeries(t *testing.T) {
	points := []dcadash.ChartPoint{
		{Date: date.MustParse("2025-01-01"), Invested: amount("500"), MarketValue: amount("510"), UnrealizedPL: amount("10")},
		{Date: date.MustParse("2025-01-02"), Invested: amount("1100"), MarketValue: amount("1160"), UnrealizedPL: amount("60")},
	}
	got := RenderSeries(NewSeries("USDC", dcadash.Window7d, []string{"BTCUSDC"}, points))
	assert.NotContains(t, got, "error")
	for _, want := range []string{
		"# Portfolio History of BTCUSDC (7d)",
		"2 days with purchases over 2025-01-01..2025-01-02.",
		"| Peak Market Value | 1160.00 |",
		"| 2025-01-02 | 1,100.00 USDC | 1,160.00 USDC | +60.00 USDC |",
	} {
		assert.Contains(t, got, want)
	}

	empty := RenderSeries(NewSeries("USDC", dcadash.WindowAll, nil, []dcadash.ChartPoint{}))
	assert.Contains(t, empty, "# Portfolio History (all)")
	assert.Contains(t, empty, "No data for the selected period.")
	assert.NotContains(t, empty, "Daily Values")
}

func TestRenderTransactions(t *testing.T) {
	txs := []dcadash.Transaction{
		{Time: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Symbol: "BTCUSDC", Side: dcadash.Buy, Price: amount("50000"), Quantity: amount("0.01"), QuoteSpent: amount("500"), Exchange: "binance"},
		{Time: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Symbol: "BTCUSDC", Side: dcadash.Buy, Price: amount("60000"), Quantity: amount("0.01"), QuoteSpent: amount("600"), Exchange: "binance"},
	}
	got := RenderTransactions(NewTransactions("USDC", nil, txs))
	assert.NotContains(t, got, "error")
	assert.Contains(t, got, "| 2 | 1 | 1,100.00 USDC | 55,000.00 USDC |")
	assert.Contains(t, got, "| Jan 02, 2025 10:00 | BTCUSDC | BUY | 0.010000 | 60,000.00 USDC | 600.00 USDC | binance |")

	empty := RenderTransactions(NewTransactions("USDC", []string{"ETHUSDC"}, nil))
	assert.Contains(t, empty, "# Transactions of ETHUSDC")
	assert.Contains(t, empty, "No transaction found.")
}

func TestRenderIterations(t *testing.T) {
	buys := 3
	got := RenderIterations([]dcadash.Iteration{
		{ID: "it-1", StartedAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Status: "ok", BuysExecuted: &buys},
	})
	assert.Contains(t, got, "| it-1 | Jan 01, 2025 10:00 | ok | - | 3 |")
	assert.True(t, strings.Contains(RenderIterations(nil), "No iteration logged."))
}
