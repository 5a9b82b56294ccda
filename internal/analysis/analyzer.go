package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CheckBroadcast reports whether a and b can be compared element-wise:
// they must have equal lengths, or one of them must hold a single value.
// Two empty arrays are compatible.
func CheckBroadcast(a, b []float64) error {
	if len(a) != len(b) && len(a) != 1 && len(b) != 1 {
		return fmt.Errorf("%w: shapes (%d,) and (%d,)", ErrShapeMismatch, len(a), len(b))
	}
	return nil
}

// broadcast expands a single-value operand to the other's length.
func broadcast(a, b []float64) ([]float64, []float64) {
	switch {
	case len(a) == len(b):
		return a, b
	case len(a) == 1:
		return repeat(a[0], len(b)), b
	default:
		return a, repeat(b[0], len(a))
	}
}

func repeat(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// ComputeRMSE returns the root mean squared error between two arrays.
// Empty arrays give NaN, as does every error metric.
func ComputeRMSE(yTrue, yPred []float64) (float64, error) {
	if err := CheckBroadcast(yTrue, yPred); err != nil {
		return 0, err
	}
	a, b := broadcast(yTrue, yPred)
	if len(a) == 0 {
		return math.NaN(), nil
	}
	return floats.Distance(a, b, 2) / math.Sqrt(float64(len(a))), nil
}

// ComputeMAE returns the mean absolute error between two arrays.
func ComputeMAE(yTrue, yPred []float64) (float64, error) {
	if err := CheckBroadcast(yTrue, yPred); err != nil {
		return 0, err
	}
	a, b := broadcast(yTrue, yPred)
	if len(a) == 0 {
		return math.NaN(), nil
	}
	return floats.Distance(a, b, 1) / float64(len(a)), nil
}

// ComputeMSE returns the mean squared error between two arrays.
func ComputeMSE(yTrue, yPred []float64) (float64, error) {
	if err := CheckBroadcast(yTrue, yPred); err != nil {
		return 0, err
	}
	a, b := broadcast(yTrue, yPred)
	if len(a) == 0 {
		return math.NaN(), nil
	}
	d := floats.Distance(a, b, 2)
	return d * d / float64(len(a)), nil
}

// ComputeComparison compares yTrue and yPred with the given metric.
func ComputeComparison(yTrue, yPred []float64, metric Metric, opts Options) (float64, error) {
	switch metric {
	case MetricRMSE:
		return ComputeRMSE(yTrue, yPred)
	case MetricMAE:
		return ComputeMAE(yTrue, yPred)
	case MetricMSE:
		return ComputeMSE(yTrue, yPred)
	case MetricVRD:
		return ComputeVanRossum(yTrue, yPred, opts.Time, opts.Tau, opts.Height)
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownMetric, metric)
	}
}
