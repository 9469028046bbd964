package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"median of pair is the midpoint", []float64{10, 20}, 0.5, 15},
		{"median of odd count", []float64{1, 2, 3}, 0.5, 2},
		{"median of even count", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"lower quartile interpolates", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"upper quartile interpolates", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"p zero is the minimum", []float64{3, 7, 9}, 0, 3},
		{"p one is the maximum", []float64{3, 7, 9}, 1, 9},
		{"single value", []float64{42}, 0.9, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.p), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 15.0, Median([]float64{20, 10}), 1e-12)
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-12)

	// NaN entries are ignored, not propagated
	assert.InDelta(t, 15.0, Median([]float64{20, math.NaN(), 10}), 1e-12)

	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Median([]float64{math.NaN(), math.NaN()})))
}

func TestDropNaN(t *testing.T) {
	in := []float64{1, math.NaN(), 2, math.NaN(), 3}
	out := DropNaN(in)
	assert.Equal(t, []float64{1, 2, 3}, out)

	// Input is untouched
	assert.True(t, math.IsNaN(in[1]))

	assert.Empty(t, DropNaN(nil))
}

func TestFiveNumber(t *testing.T) {
	summary := FiveNumber([]float64{7, 1, 3, math.NaN(), 5, 9})

	assert.Equal(t, 5, summary.Count)
	assert.InDelta(t, 1.0, summary.Min, 1e-12)
	assert.InDelta(t, 3.0, summary.Q1, 1e-12)
	assert.InDelta(t, 5.0, summary.Median, 1e-12)
	assert.InDelta(t, 7.0, summary.Q3, 1e-12)
	assert.InDelta(t, 9.0, summary.Max, 1e-12)

	empty := FiveNumber([]float64{math.NaN()})
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Median))
}

func TestMovingAverage(t *testing.T) {
	t.Run("centered window with truncated edges", func(t *testing.T) {
		got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
		want := []float64{1.5, 2, 3, 4, 4.5}
		require.Len(t, got, len(want))
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-12, "index %d", i)
		}
	})

	t.Run("window one is identity", func(t *testing.T) {
		in := []float64{3, 1, 4, 1, 5}
		assert.Equal(t, in, MovingAverage(in, 1))
	})

	t.Run("window larger than series averages everything", func(t *testing.T) {
		got := MovingAverage([]float64{2, 4, 6}, 99)
		for i := range got {
			assert.InDelta(t, 4.0, got[i], 1e-12, "index %d", i)
		}
	})

	t.Run("NaN entries are skipped inside windows", func(t *testing.T) {
		got := MovingAverage([]float64{1, math.NaN(), 3}, 3)
		assert.InDelta(t, 1.0, got[0], 1e-12)
		assert.InDelta(t, 2.0, got[1], 1e-12)
		assert.InDelta(t, 3.0, got[2], 1e-12)
	})

	t.Run("all NaN window yields NaN", func(t *testing.T) {
		got := MovingAverage([]float64{math.NaN(), math.NaN()}, 1)
		assert.True(t, math.IsNaN(got[0]))
		assert.True(t, math.IsNaN(got[1]))
	})

	t.Run("same length as input", func(t *testing.T) {
		in := make([]float64, 17)
		assert.Len(t, MovingAverage(in, 15), 17)
	})
}

func TestCorrelation(t *testing.T) {
	t.Run("perfectly correlated columns", func(t *testing.T) {
		x := []float64{1, 2, 3, 4}
		y := []float64{2, 4, 6, 8} // y = 2x
		z := []float64{8, 6, 4, 2} // z = -2x + 10

		matrix, count, err := Correlation([][]float64{x, y, z})
		require.NoError(t, err)
		assert.Equal(t, 4, count)

		// Unit diagonal
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 1.0, matrix[i][i], 1e-12)
		}
		// Symmetry
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDelta(t, matrix[i][j], matrix[j][i], 1e-12)
			}
		}
		assert.InDelta(t, 1.0, matrix[0][1], 1e-12)
		assert.InDelta(t, -1.0, matrix[0][2], 1e-12)
	})

	t.Run("complete-case drops rows with any NaN", func(t *testing.T) {
		x := []float64{1, 2, math.NaN(), 4, 5}
		y := []float64{2, 4, 6, math.NaN(), 10}

		matrix, count, err := Correlation([][]float64{x, y})
		require.NoError(t, err)
		// Rows 2 and 3 are dropped
		assert.Equal(t, 3, count)
		assert.InDelta(t, 1.0, matrix[0][1], 1e-12)
	})

	t.Run("too few complete cases", func(t *testing.T) {
		x := []float64{1, math.NaN()}
		y := []float64{math.NaN(), 2}

		_, count, err := Correlation([][]float64{x, y})
		require.Error(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("mismatched column lengths", func(t *testing.T) {
		_, _, err := Correlation([][]float64{{1, 2}, {1}})
		require.Error(t, err)
	})

	t.Run("needs two columns", func(t *testing.T) {
		_, _, err := Correlation([][]float64{{1, 2, 3}})
		require.Error(t, err)
	})
}

func TestHistogram(t *testing.T) {
	t.Run("counts cover every value", func(t *testing.T) {
		values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		hist, err := Histogram(values, 5)
		require.NoError(t, err)

		require.Len(t, hist.Counts, 5)
		require.Len(t, hist.Dividers, 6)
		assert.Equal(t, 10, hist.Total)

		sum := 0.0
		for _, c := range hist.Counts {
			sum += c
		}
		assert.InDelta(t, 10.0, sum, 1e-12)

		// The maximum lands in the last bin, not outside the range
		assert.Greater(t, hist.Counts[4], 0.0)
	})

	t.Run("NaN values are ignored", func(t *testing.T) {
		hist, err := Histogram([]float64{1, math.NaN(), 3}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, hist.Total)
	})

	t.Run("single distinct value", func(t *testing.T) {
		hist, err := Histogram([]float64{5, 5, 5}, 4)
		require.NoError(t, err)

		sum := 0.0
		for _, c := range hist.Counts {
			sum += c
		}
		assert.InDelta(t, 3.0, sum, 1e-12)
	})

	t.Run("no usable values", func(t *testing.T) {
		_, err := Histogram([]float64{math.NaN()}, 3)
		require.Error(t, err)
	})

	t.Run("invalid bin count", func(t *testing.T) {
		_, err := Histogram([]float64{1, 2}, 0)
		require.Error(t, err)
	})
}
