package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/dcadash"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = zerolog.New(nil).Level(zerolog.Disabled)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dataset() *dcadash.Dataset {
	return &dcadash.Dataset{
		Transactions: []dcadash.Transaction{{
			Time:       mustTime("2025-01-01T10:00:00Z"),
			Symbol:     "BTCUSDC",
			Side:       dcadash.Buy,
			Price:      dcadash.MustParseAmount("50000"),
			Quantity:   dcadash.MustParseAmount("0.02"),
			QuoteSpent: dcadash.MustParseAmount("1000"),
		}},
		Prices: dcadash.NewPriceBook([]dcadash.PricePoint{{
			Time:   mustTime("2025-01-01T12:00:00Z"),
			Symbol: "BTCUSDC",
			Price:  dcadash.MustParseAmount("55000"),
		}}),
	}
}

func staticLoad(ds *dcadash.Dataset, err error) LoadFunc {
	return func(context.Context) (*dcadash.Dataset, error) { return ds, err }
}

func TestRefresh(t *testing.T) {
	r := New(staticLoad(dataset(), nil), quiet).WithClock(func() time.Time { return mustTime("2025-01-02T00:00:00Z") })
	assert.Nil(t, r.Latest())

	res, published := r.Refresh(context.Background())
	require.True(t, published)
	require.NoError(t, res.Err)
	assert.Equal(t, uint64(1), res.Generation)
	assert.Equal(t, "1100", res.Portfolio.TotalMarketValue.String())
	require.Len(t, res.Series, 1)
	assert.Same(t, res, r.Latest())

	second, _ := r.Refresh(context.Background())
	assert.NotEqual(t, res.ID, second.ID)
	assert.Equal(t, uint64(2), second.Generation)
}

func TestRefresh_Errors(t *testing.T) {
	fetchErr := &dcadash.FetchError{Resource: dcadash.TransactionsResource, Status: 503, Err: errors.New("unavailable")}
	testCases := []struct {
		name string
		load LoadFunc
		want error
	}{
		{"fetch", staticLoad(nil, fetchErr), fetchErr},
		{"empty log", staticLoad(&dcadash.Dataset{Prices: dcadash.NewPriceBook(nil)}, nil), dcadash.ErrEmptyLog},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, published := New(tc.load, quiet).Refresh(context.Background())
			assert.True(t, published)
			assert.ErrorIs(t, res.Err, tc.want)
			assert.Equal(t, tc.want.Error(), res.Error)
			assert.Nil(t, res.Portfolio)
			assert.NotNil(t, res.Series)
			assert.Empty(t, res.Series)
		})
	}
}

func TestRefresh_DiscardsSuperseded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	load := func(ctx context.Context) (*dcadash.Dataset, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release // the first run is slow
		}
		return dataset(), nil
	}
	r := New(load, quiet)

	slow := make(chan bool)
	go func() {
		_, published := r.Refresh(context.Background())
		slow <- published
	}()
	<-started

	fast, published := r.Refresh(context.Background())
	require.True(t, published)
	assert.Equal(t, uint64(2), fast.Generation)

	close(release)
	assert.False(t, <-slow, "the older run finished last and must be discarded")
	assert.Same(t, fast, r.Latest())
}

func TestRefresh_DiscardsCancelled(t *testing.T) {
	load := func(ctx context.Context) (*dcadash.Dataset, error) {
		if err := ctx.Err(); err != nil {
			return nil, &dcadash.FetchError{Resource: dcadash.TransactionsResource, Err: err}
		}
		return dataset(), nil
	}
	r := New(load, quiet)
	good, published := r.Refresh(context.Background())
	require.True(t, published)

	testCases := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
		want error
	}{
		{"canceled", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}, context.Canceled},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithDeadline(context.Background(), time.Unix(0, 0))
		}, context.DeadlineExceeded},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := tc.ctx()
			cancel()
			res, published := r.Refresh(ctx)
			assert.False(t, published)
			assert.ErrorIs(t, res.Err, tc.want)
			assert.Same(t, good, r.Latest(), "the last good result stays published")
		})
	}

	// a later successful run still publishes.
	next, published := r.Refresh(context.Background())
	assert.True(t, published)
	assert.Same(t, next, r.Latest())
}

func TestSubscribe(t *testing.T) {
	r := New(staticLoad(dataset(), nil), quiet)
	ch, cancel := r.Subscribe()

	res, _ := r.Refresh(context.Background())
	select {
	case got := <-ch:
		assert.Equal(t, res.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("no result received")
	}

	cancel()
	cancel() // idempotent
	_, ok := <-ch
	assert.False(t, ok)

	_, published := r.Refresh(context.Background())
	assert.True(t, published, "publishing without subscribers")
}

func TestSubscribe_Lagging(t *testing.T) {
	r := New(staticLoad(dataset(), nil), quiet)
	ch, cancel := r.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		r.Refresh(context.Background())
	}
	assert.Equal(t, cap(ch), len(ch), "a lagging subscriber does not block publication")
	assert.Equal(t, uint64(10), r.Latest().Generation)
}

func TestStart(t *testing.T) {
	r := New(staticLoad(dataset(), nil), quiet)
	assert.Error(t, r.Start("not a schedule"))

	ch, cancel := r.Subscribe()
	defer cancel()
	require.NoError(t, r.Start("@every 1s"))
	defer r.Stop()

	select {
	case res := <-ch:
		assert.NoError(t, res.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled refresh did not run")
	}
}
