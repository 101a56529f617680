package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentagesLargestRemainder(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    []float64
	}{
		{"thirds", []float64{1, 1, 1}, []float64{33.4, 33.3, 33.3}},
		{"exact", []float64{1, 3}, []float64{25, 75}},
		{"empty", []float64{0, 0, 0}, []float64{0, 0, 0}},
		{"single", []float64{0, 5, 0}, []float64{0, 100, 0}},
		{"sevenths", []float64{1, 1, 1, 1, 1, 1, 1}, []float64{14.3, 14.3, 14.3, 14.3, 14.3, 14.3, 14.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentages(tt.weights)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)

			sum := 0
			for _, p := range got {
				sum += int(math.Round(p * 10))
			}
			if sum != 0 {
				assert.Equal(t, 1000, sum)
			}
		})
	}
}

func TestLabelIndexFoldsUnknownIntoOther(t *testing.T) {
	labels := []string{"White", "Black", "Hispanic", "Asian", "Other"}
	assert.Equal(t, 1, labelIndex(labels, " black "))
	assert.Equal(t, 4, labelIndex(labels, "Pacific Islander"))
	assert.Equal(t, -1, labelIndex([]string{"Northeast", "West"}, "Narnia"))
}
