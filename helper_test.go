package dcadash

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// quiet is the logger used by tests.
var quiet = zerolog.New(nil).Level(zerolog.Disabled)

// at parses a RFC3339 timestamp, for tests.
func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// d is a short hand for MustParseAmount.
func d(s string) Amount { return MustParseAmount(s) }

// buy is a helper for test to create a BUY transaction.
func buy(ts, symbol, price, qty, spent string) Transaction {
	return Transaction{Time: at(ts), Symbol: symbol, Side: Buy, Price: d(price), Quantity: d(qty), QuoteSpent: d(spent)}
}

// sell is a helper for test to create a SELL transaction.
func sell(ts, symbol, price, qty, spent string) Transaction {
	tx := buy(ts, symbol, price, qty, spent)
	tx.Side = Sell
	return tx
}

// price is a helper for test to create a price point.
func price(ts, symbol, p string) PricePoint {
	return PricePoint{Time: at(ts), Symbol: symbol, Price: d(p)}
}

// assertAmount compares decimal values, whatever their internal exponent.
func assertAmount(t *testing.T, want string, got Amount) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s got %s", want, got)
}
