package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/renderer"
	"github.com/google/subcommands"
)

type seriesCmd struct {
	window  string
	symbols symbolsFlag
	json    bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the daily invested amount and market value" }
func (*seriesCmd) Usage() string {
	return `dcadash series [-w 24h|7d|30d|all] [-s SYMBOL]... [-json]

Computes one point per calendar day with a transaction: the cumulative amount invested
and the market value of the holdings at the end of that day.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "w", "all", "time window: 24h, 7d, 30d or all")
	f.Var(&c.symbols, "s", "restrict the series to a symbol, can be repeated")
	f.BoolVar(&c.json, "json", false, "print the points as JSON")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	window, err := dcadash.ParseSeriesWindow(c.window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ds, ok := loadDataset(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	points := dcadash.FilterWindow(ds.Series(dcadash.BySymbols(c.symbols...)), window, time.Now())
	if c.json {
		if points == nil {
			points = []dcadash.ChartPoint{}
		}
		if err := printJSON(points); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding series: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if len(points) == 0 {
		fmt.Fprint(stdout, emptyLogMessage)
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderSeries(renderer.NewSeries(quoteCurrency(ds.Transactions), window, c.symbols, points)))
	return subcommands.ExitSuccess
}
