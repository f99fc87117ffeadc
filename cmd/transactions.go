package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/renderer"
	"github.com/google/subcommands"
)

type transactionsCmd struct {
	symbols symbolsFlag
	buys    bool
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the executed transactions" }
func (*transactionsCmd) Usage() string {
	return `dcadash transactions [-s SYMBOL]... [-buys]

Lists the transactions of the log, most recent first, with a few statistics.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.symbols, "s", "only list a symbol, can be repeated")
	f.BoolVar(&c.buys, "buys", false, "only list BUY transactions")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := loadDataset(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	predicates := []func(dcadash.Transaction) bool{dcadash.BySymbols(c.symbols...)}
	if c.buys {
		predicates = append(predicates, dcadash.BySide(dcadash.Buy))
	}
	txs := dcadash.FilterTransactions(ds.Transactions, predicates...)
	if len(txs) == 0 {
		fmt.Fprint(stdout, emptyLogMessage)
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderTransactions(renderer.NewTransactions(quoteCurrency(ds.Transactions), c.symbols, txs)))
	return subcommands.ExitSuccess
}
