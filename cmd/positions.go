package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dcadash/datasource"
	"github.com/google/subcommands"
)

type positionsCmd struct{}

func (*positionsCmd) Name() string { return "positions" }
func (*positionsCmd) Synopsis() string {
	return "print the legacy positions snapshot published by the bot"
}
func (*positionsCmd) Usage() string {
	return `dcadash positions

Prints positions_current.json as JSON. The snapshot is computed by the bot itself and
may lag behind the transaction log.
`
}

func (*positionsCmd) SetFlags(f *flag.FlagSet) {}

func (*positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loader, ok := openLoader(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	snap, err := loader.Positions(ctx)
	if errors.Is(err, datasource.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "No positions snapshot published.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading positions: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding positions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
