package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/virtual-uterus/symprobe/internal/constants"
)

// Distinguished analysis errors.
var (
	ErrShapeMismatch     = errors.New("arrays are not broadcastable")
	ErrUnknownMetric     = errors.New("invalid metric")
	ErrLengthMismatch    = errors.New("cell ids and ordered ids should have same length")
	ErrIDMismatch        = errors.New("cell id not found in ordered ids")
	ErrInvalidSpikeTrain = errors.New("invalid spike train")
	ErrNoSpikes          = errors.New("no spikes found")
	ErrUnknownMesh       = errors.New("unknown mesh")
)

// Metric names a comparison metric.
type Metric string

const (
	MetricRMSE Metric = "rmse"
	MetricMAE  Metric = "mae"
	MetricMSE  Metric = "mse"
	MetricVRD  Metric = "vrd"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricRMSE, MetricMAE, MetricMSE, MetricVRD}

// ParseMetric validates a metric tag.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: rmse, mae, mse, vrd)", ErrUnknownMetric, s)
}

// Label returns the upper-case axis label of the metric.
func (m Metric) Label() string {
	return strings.ToUpper(string(m))
}

// Options parameterises ComputeComparison. Time and Tau are only used by
// the Van Rossum distance.
type Options struct {
	Tau    float64   // kernel time constant, seconds
	Time   []float64 // sample times, seconds
	Height float64   // minimum spike peak height, mV
}

// DefaultOptions returns Options with tau 1 s and a -50 mV spike height.
func DefaultOptions() Options {
	return Options{
		Tau:    constants.DefaultTau,
		Height: constants.DefaultSpikeHeight,
	}
}

// PeakOptions filters the local maxima returned by FindPeaks.
type PeakOptions struct {
	// Height is the minimum peak value. Use math.Inf(-1) to keep all peaks.
	Height float64

	// Distance is the minimum number of samples between kept peaks.
	// Values below 1 disable the filter.
	Distance int
}

// SpikeTrain is a sorted list of spike times bounded by [0, TStop].
type SpikeTrain struct {
	Times []float64
	TStop float64
}

// Summary holds descriptive statistics of a sample.
type Summary struct {
	N      int
	Mean   float64
	Std    float64 // population standard deviation
	Min    float64
	Max    float64
	P10    float64
	Median float64
	P90    float64
}
