package dcadash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
)

// SnapshotPaths locates the price point fields inside a snapshot record, as JSONPath
// expressions. Some deployments of the bot log whole market snapshots instead of bare
// price points.
type SnapshotPaths struct {
	Time   string `env:"TS_PATH" envDefault:"$.ts"`
	Symbol string `env:"SYMBOL_PATH" envDefault:"$.symbol"`
	Price  string `env:"PRICE_PATH" envDefault:"$.price"`
}

// DefaultSnapshotPaths reads flat records shaped like a PricePoint.
var DefaultSnapshotPaths = SnapshotPaths{Time: "$.ts", Symbol: "$.symbol", Price: "$.price"}

// Validate checks that every expression compiles.
func (p SnapshotPaths) Validate() error {
	for _, path := range []string{p.Time, p.Symbol, p.Price} {
		if _, err := jsonpath.New(path); err != nil {
			return fmt.Errorf("invalid JSONPath %q: %w", path, err)
		}
	}
	return nil
}

// DecodeSnapshots extracts one price point per snapshot line. Lines where an expression
// does not resolve are malformed lines.
func DecodeSnapshots(r io.Reader, resource string, paths SnapshotPaths, log zerolog.Logger) ([]PricePoint, []*ParseError, error) {
	var (
		points []PricePoint
		bad    []*ParseError
	)
	err := scanLines(r, func(i int, line string) {
		p, err := paths.extract([]byte(line))
		if err != nil {
			bad = append(bad, badLine(log, resource, i, line, err))
			return
		}
		points = append(points, p)
	})
	if err != nil {
		return nil, bad, fmt.Errorf("cannot read %s: %w", resource, err)
	}
	return points, bad, nil
}

func (p SnapshotPaths) extract(line []byte) (PricePoint, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber() // keep prices exact
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return PricePoint{}, err
	}

	ts, err := p.str(p.Time, jobj)
	if err != nil {
		return PricePoint{}, err
	}
	on, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return PricePoint{}, fmt.Errorf("%q must be a RFC3339 timestamp: %w", p.Time, err)
	}
	symbol, err := p.str(p.Symbol, jobj)
	if err != nil {
		return PricePoint{}, err
	}
	price, err := p.amount(p.Price, jobj)
	if err != nil {
		return PricePoint{}, err
	}
	return PricePoint{Time: on.UTC(), Symbol: symbol, Price: price, Source: "snapshot"}, nil
}

// get evaluates path and unwraps single element results.
func get(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("cannot resolve %q: no match", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

func (p SnapshotPaths) str(path string, jobj any) (string, error) {
	jval, err := get(path, jobj)
	if err != nil {
		return "", err
	}
	s, ok := jval.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%q must be a non empty string, got %v", path, jval)
	}
	return s, nil
}

func (p SnapshotPaths) amount(path string, jobj any) (Amount, error) {
	jval, err := get(path, jobj)
	if err != nil {
		return Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return ParseAmount(v.String())
	case string:
		return ParseAmount(v)
	case float64:
		return A(v), nil
	default:
		return Zero, fmt.Errorf("%q must be a number or a decimal string, got %v", path, jval)
	}
}
