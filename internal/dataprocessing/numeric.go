package dataprocessing

import (
	"errors"
	"math"
	"sort"
)

var errNoValues = errors.New("no non-null values")

// mean returns the arithmetic mean of x
func mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, errNoValues
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x)), nil
}

// median returns the middle value of x (average of the two middle values
// for even lengths). x is not modified.
func median(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, errNoValues
	}
	return quantile(x, 0.5), nil
}

// stdDev returns the standard deviation of x with ddof degrees of freedom
// removed: 0 for population, 1 for sample
func stdDev(x []float64, ddof int) (float64, error) {
	n := len(x) - ddof
	if n <= 0 {
		return 0, errNoValues
	}
	m, err := mean(x)
	if err != nil {
		return 0, err
	}
	ss := 0.0
	for _, v := range x {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n)), nil
}

// quantile returns the q-th quantile (0..1) with linear interpolation
// between closest ranks: rank = q*(n-1)
func quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	rank := q * float64(n-1)
	lower := int(rank)
	weight := rank - float64(lower)
	if lower+1 >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// iqrBounds returns Q1, Q3 and the 1.5*IQR fences. ok is false when there
// is no spread to measure against.
func iqrBounds(x []float64) (q1, q3, lower, upper float64, ok bool) {
	if len(x) == 0 {
		return 0, 0, 0, 0, false
	}
	q1 = quantile(x, 0.25)
	q3 = quantile(x, 0.75)
	iqr := q3 - q1
	if !(iqr > 0) {
		return q1, q3, 0, 0, false
	}
	return q1, q3, q1 - 1.5*iqr, q3 + 1.5*iqr, true
}

// minMax returns the smallest and largest values in x
func minMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
