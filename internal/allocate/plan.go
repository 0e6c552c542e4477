package allocate

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Line is one instrument in the working allocation plan: its reference
// price from the order book, its weight, and the quantity computed for it.
type Line struct {
	Pair      string
	Precision int32
	Weight    decimal.Decimal
	Price     decimal.Decimal
	Quantity  decimal.Decimal
}

// sizePass computes the equal-weight quantity for every line given the
// full funds pool split across len(lines) instruments. Quantities are
// rounded half-to-even at the line's precision, so a precision of zero
// yields a whole-unit quantity.
func sizePass(funds decimal.Decimal, lines []*Line) {
	count := decimal.NewFromInt(int64(len(lines)))
	for _, l := range lines {
		perCoin := funds.Div(count).Mul(l.Weight)
		l.Quantity = perCoin.Div(l.Price).RoundBank(l.Precision)
	}
}

// SizeLines runs the two-pass sizing over the eligible lines: a first
// equal-weight pass, removal of any line whose quantity rounded to zero,
// then exactly one re-normalization pass over the survivors so the
// reclaimed funds are spread across them. There is no iteration to a
// fixed point beyond that single re-pass.
func SizeLines(funds decimal.Decimal, lines []*Line) (kept, dropped []*Line) {
	if len(lines) == 0 {
		return nil, nil
	}

	sizePass(funds, lines)

	for _, l := range lines {
		if l.Quantity.IsZero() {
			dropped = append(dropped, l)
		} else {
			kept = append(kept, l)
		}
	}

	if len(kept) == 0 {
		return nil, dropped
	}

	sizePass(funds, kept)
	return kept, dropped
}

// Finalize orders the surviving lines for submission: cheapest reference
// price first, pair name as the deterministic tie-break.
func Finalize(lines []*Line) []*Line {
	out := make([]*Line, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Price.Equal(out[j].Price) {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Pair < out[j].Pair
	})
	return out
}
