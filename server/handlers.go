package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/etnz/dcadash"
	"github.com/etnz/dcadash/datasource"
	"github.com/etnz/dcadash/refresh"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status      string     `json:"status"`
		Time        time.Time  `json:"time"`
		LastRefresh *time.Time `json:"last_refresh,omitempty"`
		LastError   string     `json:"last_error,omitempty"`
	}{Status: "ok", Time: s.now().UTC()}
	if res := s.refresher.Latest(); res != nil {
		health.LastRefresh = &res.At
		health.LastError = res.Error
	}
	s.respond(w, r, http.StatusOK, health)
}

// current returns the latest published result, computing one when none exists yet.
func (s *Server) current(r *http.Request) *refresh.Result {
	if res := s.refresher.Latest(); res != nil {
		return res
	}
	res, _ := s.refresher.Refresh(r.Context())
	return res
}

// dataset returns the dataset of the latest result, or the error that prevented
// loading it.
func (s *Server) dataset(r *http.Request) (*dcadash.Dataset, error) {
	res := s.current(r)
	if res.Dataset == nil {
		return nil, res.Err
	}
	return res.Dataset, nil
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	res := s.current(r)
	if res.Err != nil {
		s.respondError(w, r, res.Err)
		return
	}
	s.respond(w, r, http.StatusOK, res.Portfolio)
}

// seriesQuery reads ?window=&symbol=&symbol= into a window and a predicate.
func seriesQuery(r *http.Request) (dcadash.SeriesWindow, func(dcadash.Transaction) bool, error) {
	q := r.URL.Query()
	window, err := dcadash.ParseSeriesWindow(q.Get("window"))
	if err != nil {
		return "", nil, err
	}
	return window, dcadash.BySymbols(q["symbol"]...), nil
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) ([]dcadash.ChartPoint, bool) {
	window, bySymbols, err := seriesQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return nil, false
	}
	ds, err := s.dataset(r)
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return dcadash.FilterWindow(ds.Series(bySymbols), window, s.now()), true
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	points, ok := s.series(w, r)
	if !ok {
		return
	}
	s.respond(w, r, http.StatusOK, points)
}

func (s *Server) handleSeriesSummary(w http.ResponseWriter, r *http.Request) {
	points, ok := s.series(w, r)
	if !ok {
		return
	}
	summary, _ := dcadash.SummarizeSeries(points)
	s.respond(w, r, http.StatusOK, summary)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	txs := dcadash.FilterTransactions(ds.Transactions, dcadash.BySymbols(r.URL.Query()["symbol"]...))
	s.respond(w, r, http.StatusOK, struct {
		Transactions []dcadash.Transaction    `json:"transactions"`
		Stats        dcadash.TransactionStats `json:"stats"`
		Symbols      []string                 `json:"symbols"`
	}{txs, dcadash.Stats(txs), dcadash.Symbols(ds.Transactions)})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Positions(r.Context())
	if errors.Is(err, datasource.ErrNotFound) {
		s.respond(w, r, http.StatusNotFound, apiError{Error: err.Error(), Code: "not_found"})
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, snap)
}

func (s *Server) handleIterations(w http.ResponseWriter, r *http.Request) {
	its, _, err := s.loader.Iterations(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if its == nil {
		its = []dcadash.Iteration{}
	}
	s.respond(w, r, http.StatusOK, its)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, published := s.refresher.Refresh(r.Context())
	if res.Err != nil && !errors.Is(res.Err, dcadash.ErrEmptyLog) {
		s.respondError(w, r, res.Err)
		return
	}
	s.respond(w, r, http.StatusOK, struct {
		*refresh.Result
		Published bool `json:"published"`
	}{res, published})
}
