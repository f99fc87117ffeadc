package dcadash

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every arithmetic result is rounded to.
// It matches the precision crypto exchanges use for quantities.
const Scale = 8

// Amount is an exact decimal quantity: a unit price, a quantity of base asset or
// an amount of quote currency.
//
// Every operation rounds its result to Scale fractional digits, so that sums over
// thousands of transactions stay reproducible.
type Amount struct {
	value decimal.Decimal
}

// Zero is the zero Amount.
var Zero = Amount{}

// A is a convenient factory for Amount.
func A[T float64 | int | int64 | decimal.Decimal](value T) Amount {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return Amount{value: v}
	case float64:
		return Amount{value: decimal.NewFromFloat(v)}
	case int:
		return Amount{value: decimal.NewFromInt(int64(v))}
	case int64:
		return Amount{value: decimal.NewFromInt(v)}
	default:
		panic("unsupported type")
	}
}

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Amount{value: d}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err.Error())
	}
	return a
}

func round(d decimal.Decimal) Amount { return Amount{value: d.Round(Scale)} }

func (a Amount) Add(b Amount) Amount { return round(a.value.Add(b.value)) }
func (a Amount) Sub(b Amount) Amount { return round(a.value.Sub(b.value)) }
func (a Amount) Mul(b Amount) Amount { return round(a.value.Mul(b.value)) }

// Div returns a/b, or zero when b is zero: an empty position has no average cost.
func (a Amount) Div(b Amount) Amount {
	if b.value.IsZero() {
		return Zero
	}
	return Amount{value: a.value.DivRound(b.value, Scale)}
}

func (a Amount) Neg() Amount                     { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool             { return a.value.Equal(b.value) }
func (a Amount) Cmp(b Amount) int                { return a.value.Cmp(b.value) }
func (a Amount) LessThan(b Amount) bool          { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool       { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool                    { return a.value.IsZero() }
func (a Amount) IsNegative() bool                { return a.value.IsNegative() }
func (a Amount) IsPositive() bool                { return a.value.IsPositive() }
func (a Amount) Decimal() decimal.Decimal        { return a.value }
func (a Amount) Round(places int32) Amount       { return Amount{value: a.value.Round(places)} }
func (a Amount) StringFixed(places int32) string { return a.value.StringFixed(places) }
func (a Amount) InexactFloat64() float64         { return a.value.InexactFloat64() }

// Within reports whether |a-b| <= tol.
func (a Amount) Within(b, tol Amount) bool {
	return a.value.Sub(b.value).Abs().LessThanOrEqual(tol.value)
}

// String returns the shortest exact representation, e.g. "0.02".
func (a Amount) String() string { return a.value.String() }

// Sum adds amounts using the same rounding path as Add.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON writes the amount as a JSON string, so no precision is lost in transit.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.value.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON strings ("500.00") and JSON numbers (500).
func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.value.UnmarshalJSON(b)
}

// MarshalText writes the exact decimal representation, for text based encoders.
func (a Amount) MarshalText() ([]byte, error) { return []byte(a.value.String()), nil }

func (a *Amount) UnmarshalText(text []byte) error {
	return a.value.UnmarshalText(text)
}

// The string helpers below keep the historical contract of the dashboard: operands
// and results are base-10 strings, results carry exactly Scale fractional digits.

// AddStrings returns a+b.
func AddStrings(a, b string) (string, error) { return binary(a, b, Amount.Add) }

// SubtractStrings returns a-b.
func SubtractStrings(a, b string) (string, error) { return binary(a, b, Amount.Sub) }

// MultiplyStrings returns a*b.
func MultiplyStrings(a, b string) (string, error) { return binary(a, b, Amount.Mul) }

// DivideStrings returns a/b, or "0" when b is zero.
func DivideStrings(a, b string) (string, error) {
	x, y, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	if y.IsZero() {
		return "0", nil
	}
	return x.Div(y).StringFixed(Scale), nil
}

func binary(a, b string, op func(Amount, Amount) Amount) (string, error) {
	x, y, err := parsePair(a, b)
	if err != nil {
		return "", err
	}
	return op(x, y).StringFixed(Scale), nil
}

func parsePair(a, b string) (Amount, Amount, error) {
	x, err := ParseAmount(a)
	if err != nil {
		return Zero, Zero, err
	}
	y, err := ParseAmount(b)
	if err != nil {
		return Zero, Zero, err
	}
	return x, y, nil
}
