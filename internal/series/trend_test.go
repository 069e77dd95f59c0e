package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		current, previous, threshold float64
		want                         Trend
	}{
		{10, 10, 5, Decreasing},
		{8, 10, 5, Decreasing},
		{12, 10, 5, PotentiallyIncreasing},
		{14.99, 10, 5, PotentiallyIncreasing},
		{15, 10, 5, Increasing},
		{40, 10, 5, Increasing},
		{10.3, 10, 0.5, PotentiallyIncreasing},
		{10.5, 10, 0.5, Increasing},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.current, tt.previous, tt.threshold),
			"%v -> %v (threshold %v)", tt.previous, tt.current, tt.threshold)
	}
}

func TestClassifyShiftInvariant(t *testing.T) {
	pairs := [][2]float64{{3, 1}, {1, 3}, {7, 2}, {5, 5}}
	for _, p := range pairs {
		for _, k := range []float64{-100, 0, 13, 1000} {
			assert.Equal(t, Classify(p[0], p[1], 5), Classify(p[0]+k, p[1]+k, 5))
		}
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(5)

	_, ok := tr.Observe(10)
	assert.False(t, ok, "first value is never classified")
	assert.False(t, tr.Attention())

	trend, ok := tr.Observe(20)
	assert.True(t, ok)
	assert.Equal(t, Increasing, trend)
	assert.True(t, tr.Attention())

	trend, _ = tr.Observe(18)
	assert.Equal(t, Decreasing, trend)
	assert.False(t, tr.Attention(), "attention follows the last classification")

	tr.Reset()
	_, ok = tr.Last()
	assert.False(t, ok)
	_, ok = tr.Observe(100)
	assert.False(t, ok)
}

func TestTrendString(t *testing.T) {
	assert.Equal(t, "Potentially increasing", PotentiallyIncreasing.String())
	assert.Equal(t, "Increasing", Increasing.String())
	assert.Equal(t, "Decreasing", Decreasing.String())
}

func TestWithinDays(t *testing.T) {
	today := Date{2020, time.July, 10}
	assert.True(t, WithinDays(today, Date{2020, time.July, 3}, 7))
	assert.False(t, WithinDays(today, Date{2020, time.July, 2}, 7))
}
