package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/sources"
)

var hundred = decimal.NewFromInt(100)

// Deviation computes the relative spread between the highest and lowest quote
// as a percentage of the lowest: (max - min) / min * 100. Fewer than two
// quotes have no spread and yield zero.
func Deviation(quotes []sources.Quote) decimal.Decimal {
	if len(quotes) < 2 {
		return decimal.Zero
	}

	min := quotes[0].Price
	max := quotes[0].Price
	for _, q := range quotes[1:] {
		if q.Price.LessThan(min) {
			min = q.Price
		}
		if q.Price.GreaterThan(max) {
			max = q.Price
		}
	}

	// Quotes are validated positive at parse time, so min is never zero.
	return max.Sub(min).Div(min).Mul(hundred)
}
