package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/datasource"
	"github.com/etnz/dcadash/refresh"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var quiet = zerolog.New(nil).Level(zerolog.Disabled)

const (
	transactions = `{"ts":"2025-01-01T10:00:00Z","symbol":"BTCUSDC","side":"BUY","price":"50000","qty":"0.01","quote_spent":"500"}
{"ts":"2025-01-02T10:00:00Z","symbol":"BTCUSDC","side":"BUY","price":"60000","qty":"0.01","quote_spent":"600"}
{"ts":"2025-01-02T10:00:01Z","symbol":"ETHUSDT","side":"BUY","price":"3000","qty":"0.1","quote_spent":"300"}
`
	prices = `{"ts":"2025-01-02T12:00:00Z","symbol":"BTCUSDC","price":"58000"}
{"ts":"2025-01-02T12:00:00Z","symbol":"ETHUSDT","price":"3100"}
`
)

// newTestServer serves the files from a temporary data directory.
func newTestServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	loader := dcadash.NewLoader(dcadash.DefaultConfig(), datasource.NewDir(dir), quiet)
	s := New(Config{
		Log:       quiet,
		Loader:    loader,
		Refresher: refresh.New(loader.Load, quiet),
	})
	s.now = func() time.Time { return time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestPortfolio(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		dcadash.TransactionsResource: transactions,
		dcadash.PricesResource:       prices,
	})
	var p dcadash.Portfolio
	resp := get(t, srv.URL+"/api/portfolio", &p)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "1400", p.TotalQuoteInvested.String())
	assert.Equal(t, "1470", p.TotalMarketValue.String())
	assert.Equal(t, "70", p.TotalUnrealizedPL.String())
	assert.Equal(t, "USDT", p.QuoteCurrency)
	assert.Len(t, p.Holdings, 2)
}

func TestPortfolio_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		files  map[string]string
		status int
		code   string
	}{
		{"empty log", map[string]string{dcadash.TransactionsResource: ""}, http.StatusNotFound, "empty_log"},
		{"missing log", map[string]string{}, http.StatusBadGateway, "fetch_failed"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.files)
			var body apiError
			resp := get(t, srv.URL+"/api/portfolio", &body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestSeries(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		dcadash.TransactionsResource: transactions,
		dcadash.PricesResource:       prices,
	})
	testCases := []struct {
		query  string
		status int
		points int
	}{
		{"", http.StatusOK, 2},
		{"?window=all", http.StatusOK, 2},
		{"?window=24h", http.StatusOK, 1},
		{"?symbol=ETHUSDT", http.StatusOK, 1},
		{"?symbol=ETHUSDT&symbol=BTCUSDC", http.StatusOK, 2},
		{"?symbol=XRPUSDC", http.StatusOK, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			var points []dcadash.ChartPoint
			resp := get(t, srv.URL+"/api/series"+tc.query, &points)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotNil(t, points, "an empty series is an empty array")
			assert.Len(t, points, tc.points)
		})
	}

	resp := get(t, srv.URL+"/api/series?window=1y", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeries_EmptyLog(t *testing.T) {
	srv := newTestServer(t, map[string]string{dcadash.TransactionsResource: "\n"})
	resp, err := http.Get(srv.URL + "/api/series")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "[]", buf.String())
}

func TestSeriesSummary(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		dcadash.TransactionsResource: transactions,
		dcadash.PricesResource:       prices,
	})
	var summary dcadash.SeriesSummary
	resp := get(t, srv.URL+"/api/series/summary", &summary)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, summary.Days)
	assert.InDelta(t, 1470, summary.PeakMarketValue, 1e-9)
}

func TestTransactions(t *testing.T) {
	srv := newTestServer(t, map[string]string{dcadash.TransactionsResource: transactions})
	var body struct {
		Transactions []dcadash.Transaction    `json:"transactions"`
		Stats        dcadash.TransactionStats `json:"stats"`
		Symbols      []string                 `json:"symbols"`
	}
	resp := get(t, srv.URL+"/api/transactions?symbol=BTCUSDC", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Transactions, 2)
	assert.Equal(t, 2, body.Stats.Count)
	assert.Equal(t, "1100", body.Stats.TotalSpent.String())
	assert.Equal(t, []string{"BTCUSDC", "ETHUSDT"}, body.Symbols)
}

func TestPositionsAndIterations(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		dcadash.TransactionsResource: transactions,
		dcadash.PositionsResource:    `{"updated_at":"2025-01-02","base_currency":"USDC","total_quote_invested":"1100","positions":[{"symbol":"BTCUSDC","open_qty":0.02,"total_cost":"1100"}]}`,
	})
	var snap dcadash.PositionsSnapshot
	resp := get(t, srv.URL+"/api/positions", &snap)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, snap.Positions, 1)

	var its []dcadash.Iteration
	resp = get(t, srv.URL+"/api/iterations", &its)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, its)
	assert.Empty(t, its)

	srv = newTestServer(t, map[string]string{dcadash.TransactionsResource: transactions})
	resp = get(t, srv.URL+"/api/positions", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRefreshAndHealth(t *testing.T) {
	srv := newTestServer(t, map[string]string{dcadash.TransactionsResource: transactions})

	var health struct {
		Status      string     `json:"status"`
		LastRefresh *time.Time `json:"last_refresh"`
	}
	get(t, srv.URL+"/api/health", &health)
	assert.Equal(t, "ok", health.Status)
	assert.Nil(t, health.LastRefresh)

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		Generation uint64 `json:"generation"`
		Published  bool   `json:"published"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, uint64(1), res.Generation)
	assert.True(t, res.Published)

	get(t, srv.URL+"/api/health", &health)
	assert.NotNil(t, health.LastRefresh)
}

func TestMsgpack(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		dcadash.TransactionsResource: transactions,
		dcadash.PricesResource:       prices,
	})
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/portfolio", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/msgpack")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, msgpackContentType, resp.Header.Get("Content-Type"))

	var p dcadash.Portfolio
	dec := msgpack.NewDecoder(resp.Body)
	dec.SetCustomStructTag("json")
	require.NoError(t, dec.Decode(&p))
	assert.Equal(t, "USDT", p.QuoteCurrency)
	assert.Equal(t, "1470", p.TotalMarketValue.String())
	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "BTCUSDC", p.Holdings[0].Symbol)
}

func TestWebsocket(t *testing.T) {
	srv := newTestServer(t, map[string]string{dcadash.TransactionsResource: transactions})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// wait for the handler to subscribe before publishing.
	time.Sleep(100 * time.Millisecond)
	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	var msg struct {
		Type   string `json:"type"`
		Result struct {
			Generation uint64             `json:"generation"`
			Portfolio  *dcadash.Portfolio `json:"portfolio"`
		} `json:"result"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "portfolio", msg.Type)
	assert.Equal(t, uint64(1), msg.Result.Generation)
	require.NotNil(t, msg.Result.Portfolio)
	assert.Equal(t, "1400", msg.Result.Portfolio.TotalQuoteInvested.String())
}
