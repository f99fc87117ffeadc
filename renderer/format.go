package renderer

import (
	"strings"
	"text/template"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/etnz/dcadash"
)

func init() {
	// stablecoins are not ISO 4217 currencies, they are displayed like "1,160.00 USDC".
	for _, code := range []string{"USDC", "USDT"} {
		money.AddCurrency(code, code, "1 $", ".", ",", 2)
	}
}

var funcs = template.FuncMap{
	"money":       Money,
	"signedMoney": SignedMoney,
	"percent":     func(p dcadash.Percent) string { return p.SignedString() },
	"qty":         func(a dcadash.Amount) string { return a.StringFixed(6) },
	"timestamp":   func(t time.Time) string { return t.UTC().Format("Jan 02, 2006 15:04") },
	"join":        strings.Join,
	"base":        dcadash.BaseAsset,
}

// formatter returns the formatter of a currency, a generic one for unknown codes.
func formatter(code string) *money.Formatter {
	if c := money.GetCurrency(code); c != nil {
		return c.Formatter()
	}
	return money.NewFormatter(2, ".", ",", code, "1 $")
}

// Money formats an amount in a currency, rounded to the currency fraction, e.g.
// "1,160.00 USDC".
func Money(a dcadash.Amount, currency string) string {
	f := formatter(currency)
	minor := a.Decimal().Shift(int32(f.Fraction)).Round(0).IntPart()
	return f.Format(minor)
}

// SignedMoney is like Money with an explicit "+" for gains, and "-" alone for zero.
func SignedMoney(a dcadash.Amount, currency string) string {
	s := Money(a, currency)
	switch {
	case s == Money(dcadash.Zero, currency):
		return "-"
	case a.IsPositive():
		return "+" + s
	default:
		return s
	}
}
