package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/renderer"
	"github.com/google/subcommands"
)

// emptyLogMessage is printed instead of a report when the bot has not bought anything yet.
const emptyLogMessage = "No transaction recorded yet.\n"

type portfolioCmd struct {
	short bool
	json  bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the current positions and their market value" }
func (*portfolioCmd) Usage() string {
	return `dcadash portfolio [-short] [-json]

Replays the transaction log and values every position at the latest known price.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.short, "short", false, "only display the totals")
	f.BoolVar(&c.json, "json", false, "print the portfolio as JSON")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := loadDataset(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	p, err := ds.Portfolio(time.Now())
	if errors.Is(err, dcadash.ErrEmptyLog) {
		fmt.Fprint(stdout, emptyLogMessage)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		if err := printJSON(p); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding portfolio: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderPortfolio(p, renderer.PortfolioRenderOptions{SkipPositions: c.short}))
	return subcommands.ExitSuccess
}
