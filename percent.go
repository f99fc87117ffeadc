package dcadash

import "fmt"

// Percent is a ratio expressed in percent, e.g. 5.45 for +5.45%.
type Percent float64

// PercentChange returns (current-cost)/cost in percent, or 0 when cost is zero.
func PercentChange(current, cost Amount) Percent {
	if cost.IsZero() {
		return 0
	}
	ratio := current.Sub(cost).Decimal().DivRound(cost.Decimal(), Scale)
	return Percent(ratio.InexactFloat64() * 100)
}

// Equal reports whether p and q differ by less than 0.0001 percentage point.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString formats the percentage with an explicit sign, e.g. "+5.45%".
func (p Percent) SignedString() string {
	return fmt.Sprintf("%+.2f%%", float64(p))
}
