// Package aggregator provides pure price aggregation strategies.
package aggregator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zavodil/oracle-ark/pkg/sources"
)

func quotesOf(prices ...float64) []sources.Quote {
	quotes := make([]sources.Quote, len(prices))
	for i, p := range prices {
		quotes[i] = sources.Quote{
			Source: "test",
			Price:  decimal.NewFromFloat(p),
		}
	}
	return quotes
}

func TestAverage(t *testing.T) {
	avg := Average(quotesOf(100, 200))
	assert.True(t, avg.Equal(decimal.NewFromInt(150)), "average of [100, 200] should be 150, got %s", avg)
}

func TestMedian_OddCount(t *testing.T) {
	med := Median(quotesOf(30, 10, 20))
	assert.True(t, med.Equal(decimal.NewFromInt(20)), "median of [10, 20, 30] should be 20, got %s", med)
}

func TestMedian_EvenCount(t *testing.T) {
	med := Median(quotesOf(40, 10, 30, 20))
	assert.True(t, med.Equal(decimal.NewFromInt(25)), "median of [10, 20, 30, 40] should be 25, got %s", med)
}

func TestMedian_SingleQuote(t *testing.T) {
	med := Median(quotesOf(42))
	assert.True(t, med.Equal(decimal.NewFromInt(42)))
}

func TestWeightedAverage_WithWeights(t *testing.T) {
	quotes := []sources.Quote{
		{Source: "coingecko", Price: decimal.NewFromInt(100)},
		{Source: "binance", Price: decimal.NewFromInt(200)},
	}
	weights := map[string]float64{
		"coingecko": 3,
		"binance":   1,
	}

	// (100*3 + 200*1) / 4 = 125
	avg := WeightedAverage(quotes, weights)
	assert.True(t, avg.Equal(decimal.NewFromInt(125)), "got %s", avg)
}

func TestWeightedAverage_MissingWeightDefaultsToOne(t *testing.T) {
	quotes := []sources.Quote{
		{Source: "coingecko", Price: decimal.NewFromInt(100)},
		{Source: "binance", Price: decimal.NewFromInt(200)},
	}
	weights := map[string]float64{"coingecko": 2}

	// (100*2 + 200*1) / 3
	expected := decimal.NewFromInt(400).Div(decimal.NewFromInt(3))
	avg := WeightedAverage(quotes, weights)
	assert.True(t, avg.Sub(expected).Abs().LessThan(decimal.NewFromFloat(0.0000001)), "got %s", avg)
}

func TestWeightedAverage_EmptyTableEqualsAverage(t *testing.T) {
	quotes := quotesOf(100, 200, 600)
	assert.True(t, WeightedAverage(quotes, nil).Equal(Average(quotes)))
}

func TestWeightedAverage_AllZeroWeightsFallsBackToAverage(t *testing.T) {
	quotes := []sources.Quote{
		{Source: "coingecko", Price: decimal.NewFromInt(100)},
		{Source: "binance", Price: decimal.NewFromInt(200)},
	}
	weights := map[string]float64{"coingecko": 0, "binance": 0}

	avg := WeightedAverage(quotes, weights)
	assert.True(t, avg.Equal(decimal.NewFromInt(150)), "got %s", avg)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		method   Method
		prices   []float64
		expected int64
	}{
		{name: "average", method: MethodAverage, prices: []float64{100, 200}, expected: 150},
		{name: "median", method: MethodMedian, prices: []float64{10, 20, 30}, expected: 20},
		{name: "weighted without table", method: MethodWeightedAvg, prices: []float64{100, 200}, expected: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Aggregate(tt.method, quotesOf(tt.prices...), nil)
			require.NoError(t, err)
			assert.True(t, result.Equal(decimal.NewFromInt(tt.expected)), "got %s", result)
		})
	}
}

func TestAggregate_NoQuotes(t *testing.T) {
	_, err := Aggregate(MethodAverage, nil, nil)
	require.ErrorIs(t, err, ErrNoQuotes)
}

func TestAggregate_UnknownMethod(t *testing.T) {
	_, err := Aggregate(Method("mode"), quotesOf(1), nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethodValid(t *testing.T) {
	assert.True(t, MethodAverage.Valid())
	assert.True(t, MethodMedian.Valid())
	assert.True(t, MethodWeightedAvg.Valid())
	assert.False(t, Method("").Valid())
	assert.False(t, Method("mean").Valid())
}
