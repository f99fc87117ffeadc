package dcadash

import (
	"slices"
	"sort"
)

// BySymbol returns a predicate matching transactions on symbol.
func BySymbol(symbol string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Symbol == symbol }
}

// BySymbols returns a predicate matching transactions on any of symbols. No symbol
// matches everything.
func BySymbols(symbols ...string) func(Transaction) bool {
	if len(symbols) == 0 {
		return func(Transaction) bool { return true }
	}
	return func(tx Transaction) bool { return slices.Contains(symbols, tx.Symbol) }
}

// BySide returns a predicate matching transactions on side.
func BySide(side Side) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Side == side }
}

// FilterTransactions returns a new slice with the transactions matching all predicates,
// in input order.
func FilterTransactions(txs []Transaction, predicates ...func(Transaction) bool) []Transaction {
	kept := make([]Transaction, 0, len(txs))
next:
	for _, tx := range txs {
		for _, p := range predicates {
			if !p(tx) {
				continue next
			}
		}
		kept = append(kept, tx)
	}
	return kept
}

// Symbols returns the distinct symbols of txs in alphabetical order.
func Symbols(txs []Transaction) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, tx := range txs {
		if !seen[tx.Symbol] {
			seen[tx.Symbol] = true
			symbols = append(symbols, tx.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// TransactionStats summarizes a list of transactions, whatever their side.
type TransactionStats struct {
	Count        int    `json:"count"`
	Symbols      int    `json:"symbols"`
	TotalSpent   Amount `json:"total_spent"`
	AveragePrice Amount `json:"average_price"` // plain mean of unit prices
}

// Stats computes TransactionStats over txs.
func Stats(txs []Transaction) TransactionStats {
	s := TransactionStats{Count: len(txs), Symbols: len(Symbols(txs))}
	prices := Zero
	for _, tx := range txs {
		s.TotalSpent = s.TotalSpent.Add(tx.QuoteSpent)
		prices = prices.Add(tx.Price)
	}
	s.AveragePrice = prices.Div(A(len(txs)))
	return s
}
