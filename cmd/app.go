// Package cmd implements the dcadash CLI: reports on the bot's portfolio and the
// dashboard server.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/config"
	"github.com/etnz/dcadash/datasource"
	"github.com/etnz/dcadash/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands lists every subcommand of the application.
var Commands = []subcommands.Command{
	&portfolioCmd{},
	&seriesCmd{},
	&transactionsCmd{},
	&positionsCmd{},
	&iterationsCmd{},
	&serveCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	for _, cmd := range Commands {
		c.Register(cmd, group(cmd))
	}
}

func group(c subcommands.Command) string {
	switch c.(type) {
	case *serveCmd:
		return "server"
	case *topicCmd:
		return "help"
	default:
		return "reports"
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataFlag    = flag.String("data", "", "location of the bot logs: directory, http(s) URL or s3:// location (overrides DCADASH_DATA_BASE_PATH)")
	pricesFlag  = flag.String("prices", "", "name of the price feed, prices.ndjson or snapshots.ndjson (overrides DCADASH_PRICE_FILE)")
	rawFlag     = flag.Bool("raw", false, "print raw markdown instead of rendering it for the terminal")
	verboseFlag = flag.Bool("v", false, "log debug messages")
)

// stdout receives every report.
var stdout io.Writer = os.Stdout

// loadConfig reads the configuration from the environment and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *dataFlag != "" {
		cfg.Data.DataBasePath = *dataFlag
	}
	if *pricesFlag != "" {
		cfg.Data.PriceFile = *pricesFlag
	}
	if *verboseFlag {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the application logger. Reports go to stdout, logs to stderr.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

// newLoader is the central function to access the bot's logs.
func newLoader(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dcadash.Loader, error) {
	src, err := datasource.New(log.WithContext(ctx), cfg.Data.DataBasePath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", cfg.Data.DataBasePath, err)
	}
	return dcadash.NewLoader(cfg.Data, src, log), nil
}

// openLoader combines loadConfig, newLogger and newLoader, reporting errors on stderr.
func openLoader(ctx context.Context) (*dcadash.Loader, bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, false
	}
	loader, err := newLoader(ctx, cfg, newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	return loader, true
}

// loadDataset fetches the complete dataset, reporting errors on stderr.
func loadDataset(ctx context.Context) (*dcadash.Dataset, bool) {
	loader, ok := openLoader(ctx)
	if !ok {
		return nil, false
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading the bot logs: %v\n", err)
		return nil, false
	}
	if n := len(ds.ParseErrors); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d malformed lines skipped\n", n)
	}
	return ds, true
}

// quoteCurrency returns the quote currency of the transactions, or the default one
// when there is none.
func quoteCurrency(txs []dcadash.Transaction) string {
	r, err := dcadash.Replay(txs)
	if err != nil {
		return dcadash.DefaultQuoteCurrency
	}
	return r.QuoteCurrency
}

// symbolsFlag collects repeated -s flags.
type symbolsFlag []string

func (s *symbolsFlag) String() string { return fmt.Sprint(*s) }

func (s *symbolsFlag) Set(v string) error {
	if v == "" {
		return errors.New("empty symbol")
	}
	*s = append(*s, v)
	return nil
}
