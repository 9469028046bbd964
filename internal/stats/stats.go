// Package stats provides the numeric summaries used by the aggregation and
// charting stages. Quantiles use linear interpolation between order
// statistics (the convention spreadsheet medians follow), so a two-element
// sample has its median exactly halfway between the elements.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DropNaN returns a copy of values with NaN entries removed
func DropNaN(values []float64) []float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	return clean
}

// Quantile returns the p-quantile of sorted, computed as the linear
// interpolation h = (n-1)p between order statistics. sorted must be
// ascending and free of NaN. Returns NaN for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median returns the median of values, ignoring NaN entries.
// Returns NaN when no usable values remain.
func Median(values []float64) float64 {
	clean := DropNaN(values)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return Quantile(clean, 0.5)
}

// FiveNumberSummary holds the box plot statistics for one group
type FiveNumberSummary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Count  int
}

// FiveNumber computes the five-number summary of values, ignoring NaN
// entries. Count reports how many usable values contributed.
func FiveNumber(values []float64) FiveNumberSummary {
	clean := DropNaN(values)
	if len(clean) == 0 {
		nan := math.NaN()
		return FiveNumberSummary{Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	}
	sort.Float64s(clean)
	return FiveNumberSummary{
		Min:    clean[0],
		Q1:     Quantile(clean, 0.25),
		Median: Quantile(clean, 0.5),
		Q3:     Quantile(clean, 0.75),
		Max:    clean[len(clean)-1],
		Count:  len(clean),
	}
}

// MovingAverage returns the centered moving average of values. Windows are
// truncated at both edges rather than padded, so the output has the same
// length as the input and no leading gap. NaN entries are skipped inside
// each window; a window with no usable values yields NaN.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	n := len(values)
	out := make([]float64, n)

	for i := 0; i < n; i++ {
		lo := i - (window-1)/2
		hi := i + window/2
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}

		sum := 0.0
		count := 0
		for j := lo; j <= hi; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			sum += values[j]
			count++
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}

	return out
}

// Correlation computes the Pearson correlation matrix of the given columns
// using complete-case analysis: any observation with a NaN in any column is
// dropped before the computation. All columns must have the same length.
// The returned count is the number of complete cases that contributed.
func Correlation(columns [][]float64) ([][]float64, int, error) {
	c := len(columns)
	if c < 2 {
		return nil, 0, fmt.Errorf("correlation requires at least two columns, got %d", c)
	}
	n := len(columns[0])
	for i, col := range columns {
		if len(col) != n {
			return nil, 0, fmt.Errorf("column %d has %d values, expected %d", i, len(col), n)
		}
	}

	// Complete-case filter
	complete := make([]int, 0, n)
	for row := 0; row < n; row++ {
		usable := true
		for _, col := range columns {
			if math.IsNaN(col[row]) {
				usable = false
				break
			}
		}
		if usable {
			complete = append(complete, row)
		}
	}

	if len(complete) < 2 {
		return nil, len(complete), fmt.Errorf("correlation requires at least two complete cases, got %d", len(complete))
	}

	data := mat.NewDense(len(complete), c, nil)
	for i, row := range complete {
		for j, col := range columns {
			data.Set(i, j, col[row])
		}
	}

	dst := mat.NewSymDense(c, nil)
	stat.CorrelationMatrix(dst, data, nil)

	matrix := make([][]float64, c)
	for i := 0; i < c; i++ {
		matrix[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			matrix[i][j] = dst.At(i, j)
		}
	}

	return matrix, len(complete), nil
}

// HistogramResult holds equal-width histogram bins over a value range
type HistogramResult struct {
	// Dividers has len(Counts)+1 entries; bin i spans
	// [Dividers[i], Dividers[i+1]).
	Dividers []float64
	Counts   []float64
	Total    int
}

// Histogram bins values (ignoring NaN entries) into the requested number of
// equal-width bins spanning the observed range. The maximum observation is
// counted in the last bin.
func Histogram(values []float64, bins int) (*HistogramResult, error) {
	if bins < 1 {
		return nil, fmt.Errorf("histogram requires at least one bin, got %d", bins)
	}

	clean := DropNaN(values)
	if len(clean) == 0 {
		return nil, fmt.Errorf("histogram requires at least one usable value")
	}
	sort.Float64s(clean)

	lo := clean[0]
	hi := clean[len(clean)-1]
	if lo == hi {
		// Degenerate range: widen so every value lands in a real bin
		lo -= 0.5
		hi += 0.5
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// Bins are half-open, so nudge the top divider to include the maximum
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(make([]float64, bins), dividers, clean, nil)

	return &HistogramResult{
		Dividers: dividers,
		Counts:   counts,
		Total:    len(clean),
	}, nil
}
