package magnify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"outlier", []float64{10, 12, 11, 13, 1000}, 12},
		{"negative", []float64{-5, -1, -3, -2}, -2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Median(tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMedian_Integers(t *testing.T) {
	got, err := Median([]int16{9, 1, 4, 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestMedian_DoesNotModifyInput(t *testing.T) {
	samples := []float64{5, 3, 9, 1}
	_, err := Median(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 3, 9, 1}, samples)
}

func TestMedian_Empty(t *testing.T) {
	_, err := Median([]float64{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
