package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes descriptive statistics of values, ignoring NaNs.
// An empty sample yields a Summary of NaNs with N == 0.
func Summarize(values []float64) Summary {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Max: nan, P10: nan, Median: nan, P90: nan}
	}

	sort.Float64s(valid)
	mean, std := MeanStd(valid)
	return Summary{
		N:      len(valid),
		Mean:   mean,
		Std:    std,
		Min:    valid[0],
		Max:    valid[len(valid)-1],
		P10:    stat.Quantile(0.1, stat.LinInterp, valid, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, valid, nil),
		P90:    stat.Quantile(0.9, stat.LinInterp, valid, nil),
	}
}

// MeanStd returns the mean and population standard deviation of values.
// A single value has zero deviation; an empty slice yields NaNs.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return values[0], 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Range returns max - min of values.
func Range(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Max(values) - floats.Min(values)
}
