package aggregator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeviation(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected float64
	}{
		{name: "five percent spread", prices: []float64{100, 105}, expected: 5},
		{name: "identical quotes", prices: []float64{50, 50, 50}, expected: 0},
		{name: "single quote", prices: []float64{123.45}, expected: 0},
		{name: "no quotes", prices: nil, expected: 0},
		{name: "order independent", prices: []float64{105, 100}, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := Deviation(quotesOf(tt.prices...))
			assert.True(t, dev.Equal(decimal.NewFromFloat(tt.expected)),
				"deviation of %v should be %v, got %s", tt.prices, tt.expected, dev)
		})
	}
}
