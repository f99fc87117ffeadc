package dcadash

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNDJSON(t *testing.T) {
	input := `{"ts":"2025-01-01T10:00:00Z","symbol":"BTCUSDC","side":"BUY","price":"50000","qty":"0.01","quote_spent":"500"}

{"ts":"2025-01-02T10:00:00Z","symbol":"BTCUSDC","side":"BUY","price":"60000","qty":"0.01",
not json at all
{"symbol":"ETHUSDC","side":"BUY"}
   
{"ts":"2025-01-02T10:00:00Z","symbol":"BTCUSDC","side":"BUY","price":"60000","qty":"0.01","quote_spent":"600"}
`
	txs, bad, err := DecodeNDJSON[Transaction](strings.NewReader(input), TransactionsResource, quiet)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assertAmount(t, "500", txs[0].QuoteSpent)
	assertAmount(t, "600", txs[1].QuoteSpent)

	require.Len(t, bad, 3)
	var lines []int
	for _, e := range bad {
		lines = append(lines, e.Line)
		assert.Equal(t, TransactionsResource, e.Resource)
	}
	assert.Equal(t, []int{3, 4, 5}, lines, "line numbers count blank lines")
	assert.Contains(t, bad[2].Error(), "transactions.ndjson:5")
	assert.Contains(t, bad[2].Error(), `missing property "ts"`)

	r, err := Replay(txs)
	require.NoError(t, err)
	assertAmount(t, "1100", r.TotalQuoteInvested)
}

func TestDecodeNDJSON_Empty(t *testing.T) {
	txs, bad, err := DecodeNDJSON[Transaction](strings.NewReader("\n\n"), TransactionsResource, quiet)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Empty(t, bad)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDecodeNDJSON_ReadError(t *testing.T) {
	_, _, err := DecodeNDJSON[PricePoint](failingReader{}, PricesResource, quiet)
	assert.ErrorContains(t, err, "connection reset")
}

func TestDecodeNDJSON_Prices(t *testing.T) {
	input := `{"ts":"2025-01-01T12:00:00Z","symbol":"BTCUSDC","price":"51000","source":"binance"}
{"ts":"2025-01-01T12:00:00Z","price":"51000"}
{"ts":"2025-01-02T12:00:00Z","symbol":"BTCUSDC","price":52000.5}
`
	points, bad, err := DecodeNDJSON[PricePoint](strings.NewReader(input), PricesResource, quiet)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Len(t, bad, 1)
	assert.Equal(t, 2, bad[0].Line)
	assertAmount(t, "52000.5", points[1].Price)
	assert.Equal(t, "binance", points[0].Source)
}
