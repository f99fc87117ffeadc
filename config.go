package dcadash

import (
	"fmt"
	"strings"
)

// Resource names published by the bot.
const (
	PositionsResource    = "positions_current.json"
	TransactionsResource = "transactions.ndjson"
	PricesResource       = "prices.ndjson"
	SnapshotsResource    = "snapshots.ndjson"
	IterationsResource   = "iterations.ndjson"
)

// Config tells the engine where the bot's logs live. It is built once and passed
// explicitly at construction time.
type Config struct {
	// DataBasePath is the location of the log files: an http(s) URL, an s3:// location
	// or a local directory.
	DataBasePath string `env:"DATA_BASE_PATH" envDefault:"./data"`
	// PriceFile is the name of the price feed, either prices.ndjson or snapshots.ndjson.
	PriceFile string `env:"PRICE_FILE" envDefault:"prices.ndjson"`
	// SnapshotPaths locates price fields in snapshot records.
	SnapshotPaths SnapshotPaths `envPrefix:"SNAPSHOT_"`
}

// DefaultConfig reads logs from ./data.
func DefaultConfig() Config {
	return Config{
		DataBasePath:  "./data",
		PriceFile:     PricesResource,
		SnapshotPaths: DefaultSnapshotPaths,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataBasePath) == "" {
		return fmt.Errorf("data base path is not set")
	}
	if c.PriceFile == "" {
		return fmt.Errorf("price file is not set")
	}
	if c.snapshotFeed() {
		return c.SnapshotPaths.Validate()
	}
	return nil
}

// snapshotFeed reports whether the price feed holds snapshot records.
func (c Config) snapshotFeed() bool {
	return strings.HasPrefix(c.PriceFile, "snapshots")
}
