package dcadash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/etnz/dcadash/datasource"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Loader fetches the bot's logs from a data source.
//
// Transactions are the source of truth: failing to fetch them fails the pipeline.
// Prices only decorate positions: failing to fetch them degrades to an empty book.
type Loader struct {
	cfg Config
	src datasource.Source
	log zerolog.Logger
}

// NewLoader returns a Loader reading resources named by cfg from src.
func NewLoader(cfg Config, src datasource.Source, log zerolog.Logger) *Loader {
	return &Loader{
		cfg: cfg,
		src: src,
		log: log.With().Str("component", "loader").Str("source", src.String()).Logger(),
	}
}

// fetch opens a resource and hands it to decode, wrapping failures into FetchError.
func (l *Loader) fetch(ctx context.Context, resource string, decode func(io.Reader) error) error {
	rc, err := l.src.Open(ctx, resource)
	if err != nil {
		ferr := &FetchError{Resource: resource, Err: err}
		var se *datasource.StatusError
		if errors.As(err, &se) {
			ferr.Status = se.Status
		}
		return ferr
	}
	defer rc.Close()
	if err := decode(rc); err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	return nil
}

// Transactions fetches and decodes the transaction log.
func (l *Loader) Transactions(ctx context.Context) ([]Transaction, []*ParseError, error) {
	var (
		txs []Transaction
		bad []*ParseError
	)
	err := l.fetch(ctx, TransactionsResource, func(r io.Reader) (err error) {
		txs, bad, err = DecodeNDJSON[Transaction](r, TransactionsResource, l.log)
		return err
	})
	if err != nil {
		return nil, bad, err
	}
	l.log.Debug().Int("transactions", len(txs)).Int("skipped", len(bad)).Msg("transactions loaded")
	return txs, bad, nil
}

// Prices fetches the price feed. It never fails: an unavailable feed is logged and
// yields an empty book, so that positions can still be displayed.
func (l *Loader) Prices(ctx context.Context) (*PriceBook, []*ParseError) {
	var (
		points []PricePoint
		bad    []*ParseError
	)
	resource := l.cfg.PriceFile
	err := l.fetch(ctx, resource, func(r io.Reader) (err error) {
		if l.cfg.snapshotFeed() {
			points, bad, err = DecodeSnapshots(r, resource, l.cfg.SnapshotPaths, l.log)
		} else {
			points, bad, err = DecodeNDJSON[PricePoint](r, resource, l.log)
		}
		return err
	})
	if err != nil {
		l.log.Warn().Err(err).Msg("could not fetch prices, market values will be unavailable")
		return NewPriceBook(nil), bad
	}
	l.log.Debug().Int("prices", len(points)).Int("skipped", len(bad)).Msg("prices loaded")
	return NewPriceBook(points), bad
}

// Positions fetches the legacy pre-computed snapshot.
func (l *Loader) Positions(ctx context.Context) (*PositionsSnapshot, error) {
	var snap PositionsSnapshot
	err := l.fetch(ctx, PositionsResource, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return fmt.Errorf("invalid %s: %w", PositionsResource, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Iterations fetches the optional bot run log. A missing resource is an empty log.
func (l *Loader) Iterations(ctx context.Context) ([]Iteration, []*ParseError, error) {
	var (
		its []Iteration
		bad []*ParseError
	)
	err := l.fetch(ctx, IterationsResource, func(r io.Reader) (err error) {
		its, bad, err = DecodeNDJSON[Iteration](r, IterationsResource, l.log)
		return err
	})
	if errors.Is(err, datasource.ErrNotFound) {
		l.log.Debug().Msg("no iterations log")
		return nil, nil, nil
	}
	return its, bad, err
}

// Dataset is the complete input of a computation, fetched in one go.
type Dataset struct {
	Transactions []Transaction
	Prices       *PriceBook
	ParseErrors  []*ParseError
	FetchedAt    time.Time
}

// Load fetches transactions and prices in parallel and merges them. It fails only when
// the transaction log cannot be fetched.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	var (
		txs       []Transaction
		prices    *PriceBook
		txErrs    []*ParseError
		priceErrs []*ParseError
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, txErrs, err = l.Transactions(gctx)
		return err
	})
	g.Go(func() error {
		prices, priceErrs = l.Prices(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dataset{
		Transactions: txs,
		Prices:       prices,
		ParseErrors:  append(txErrs, priceErrs...),
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// Portfolio replays the transactions and values them at the latest known prices as
// of now. It returns ErrEmptyLog when there is no transaction at all.
func (d *Dataset) Portfolio(now time.Time) (*Portfolio, error) {
	r, err := Replay(d.Transactions)
	if err != nil {
		return nil, err
	}
	p := Valuate(r, d.Prices.AsOf(now))
	if p.LastUpdated.IsZero() {
		p.LastUpdated = now.UTC()
	}
	return p, nil
}

// Series builds the daily chart of the transactions matching predicates.
func (d *Dataset) Series(predicates ...func(Transaction) bool) []ChartPoint {
	return BuildSeries(FilterTransactions(d.Transactions, predicates...), d.Prices)
}
