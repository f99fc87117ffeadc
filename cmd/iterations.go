package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dcadash/renderer"
	"github.com/google/subcommands"
)

type iterationsCmd struct{}

func (*iterationsCmd) Name() string     { return "iterations" }
func (*iterationsCmd) Synopsis() string { return "list the bot runs" }
func (*iterationsCmd) Usage() string {
	return `dcadash iterations

Lists the runs of the bot recorded in iterations.ndjson.
`
}

func (*iterationsCmd) SetFlags(f *flag.FlagSet) {}

func (*iterationsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loader, ok := openLoader(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	its, _, err := loader.Iterations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading iterations: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderIterations(its))
	return subcommands.ExitSuccess
}
