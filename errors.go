package dcadash

import (
	"errors"
	"fmt"
)

// ErrEmptyLog is returned when a portfolio is derived from a transaction log with no
// transaction at all. It is a user facing condition ("no transaction history"), not a
// failure of the engine.
var ErrEmptyLog = errors.New("no transaction history")

// FetchError reports that a resource could not be retrieved from the data source.
// It is never retried by the engine.
type FetchError struct {
	Resource string // e.g. "transactions.ndjson"
	Status   int    // transport status when known, 0 otherwise
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cannot fetch %s: status %d: %v", e.Resource, e.Status, e.Err)
	}
	return fmt.Sprintf("cannot fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed NDJSON line. The line is dropped, the rest of the
// resource is still decoded.
type ParseError struct {
	Resource string
	Line     int // 1-based
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error %s:%d: %v", e.Resource, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StalePriceWarning signals a held symbol without any resolvable price. Its holding is
// reported without market data instead of failing the valuation.
type StalePriceWarning struct {
	Symbol string `json:"symbol"`
}

func (w StalePriceWarning) String() string {
	return fmt.Sprintf("no price available for %s", w.Symbol)
}
