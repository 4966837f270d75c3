// Package aggregator provides pure price aggregation strategies.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/sources"
)

// Method selects how quotes from multiple sources are combined.
type Method string

const (
	// MethodAverage is the arithmetic mean.
	MethodAverage Method = "average"
	// MethodMedian is the middle value, protecting against outliers.
	MethodMedian Method = "median"
	// MethodWeightedAvg is a per-source-weighted mean. Sources without a
	// configured weight count as 1.0, so an empty weight table makes this
	// identical to MethodAverage.
	MethodWeightedAvg Method = "weighted_avg"
)

// Valid reports whether the method is one of the known strategies.
func (m Method) Valid() bool {
	switch m {
	case MethodAverage, MethodMedian, MethodWeightedAvg:
		return true
	}
	return false
}

// Aggregate combines a non-empty set of quotes into a single price.
// Deterministic and side-effect-free; the input slice is not modified.
func Aggregate(method Method, quotes []sources.Quote, weights map[string]float64) (decimal.Decimal, error) {
	if len(quotes) == 0 {
		return decimal.Zero, ErrNoQuotes
	}

	switch method {
	case MethodAverage:
		return Average(quotes), nil
	case MethodMedian:
		return Median(quotes), nil
	case MethodWeightedAvg:
		return WeightedAverage(quotes, weights), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// Average computes the arithmetic mean of the quote prices.
func Average(quotes []sources.Quote) decimal.Decimal {
	sum := decimal.Zero
	for _, q := range quotes {
		sum = sum.Add(q.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(quotes))))
}

// Median computes the median quote price. For an even count it returns the
// mean of the two middle values.
func Median(quotes []sources.Quote) decimal.Decimal {
	prices := make([]decimal.Decimal, len(quotes))
	for i, q := range quotes {
		prices[i] = q.Price
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LessThan(prices[j])
	})

	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return prices[n/2-1].Add(prices[n/2]).Div(decimal.NewFromInt(2))
}

// WeightedAverage computes a per-source-weighted mean. A source missing from
// the weight table weighs 1.0. If every applicable weight is zero, the plain
// average is returned rather than dividing by zero.
func WeightedAverage(quotes []sources.Quote, weights map[string]float64) decimal.Decimal {
	weightedSum := decimal.Zero
	totalWeight := decimal.Zero

	for _, q := range quotes {
		weight := decimal.NewFromInt(1)
		if w, ok := weights[q.Source]; ok {
			weight = decimal.NewFromFloat(w)
		}
		weightedSum = weightedSum.Add(q.Price.Mul(weight))
		totalWeight = totalWeight.Add(weight)
	}

	if totalWeight.IsZero() {
		return Average(quotes)
	}
	return weightedSum.Div(totalWeight)
}
