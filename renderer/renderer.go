// Package renderer renders the portfolio, its chart and its transactions as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/dcadash"
)

//go:embed templates/*.md
var templates embed.FS

// PortfolioRenderOptions holds configuration for rendering a portfolio.
type PortfolioRenderOptions struct {
	SkipPositions bool // Only render the totals.
}

// RenderPortfolio renders the Portfolio to a markdown string.
func RenderPortfolio(p *dcadash.Portfolio, opts PortfolioRenderOptions) string {
	partials := map[string]string{
		"portfolio_summary":  "portfolio_summary.md",
		"portfolio_warnings": "portfolio_warnings.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipPositions {
		partials["portfolio_positions"] = "portfolio_positions.md"
	} else {
		partials["portfolio_positions"] = ""
	}
	return renderTemplate("portfolio", "portfolio.md", partials, p)
}

// Series is the data rendered by RenderSeries.
type Series struct {
	QuoteCurrency string
	Window        dcadash.SeriesWindow
	Symbols       []string // empty for all
	Points        []dcadash.ChartPoint
	Summary       dcadash.SeriesSummary
}

// NewSeries builds the Series view of points.
func NewSeries(quote string, window dcadash.SeriesWindow, symbols []string, points []dcadash.ChartPoint) *Series {
	summary, _ := dcadash.SummarizeSeries(points)
	return &Series{QuoteCurrency: quote, Window: window, Symbols: symbols, Points: points, Summary: summary}
}

// RenderSeries renders a daily series to a markdown string.
func RenderSeries(s *Series) string {
	partials := map[string]string{
		"series_summary": "series_summary.md",
		"series_points":  "series_points.md",
	}
	return renderTemplate("series", "series.md", partials, s)
}

// Transactions is the data rendered by RenderTransactions.
type Transactions struct {
	QuoteCurrency string
	Symbols       []string // filter, empty for all
	Transactions  []dcadash.Transaction
	Stats         dcadash.TransactionStats
}

// NewTransactions builds the Transactions view of txs.
func NewTransactions(quote string, symbols []string, txs []dcadash.Transaction) *Transactions {
	return &Transactions{QuoteCurrency: quote, Symbols: symbols, Transactions: txs, Stats: dcadash.Stats(txs)}
}

// RenderTransactions renders transactions to a markdown string.
func RenderTransactions(t *Transactions) string {
	partials := map[string]string{
		"transactions_stats": "transactions_stats.md",
		"transactions_list":  "transactions_list.md",
	}
	return renderTemplate("transactions", "transactions.md", partials, t)
}

// RenderIterations renders the bot runs to a markdown string.
func RenderIterations(its []dcadash.Iteration) string {
	return renderTemplate("iterations", "iterations.md", nil, its)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
