package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// FindPeaks returns the indices of the local maxima of x that pass opts.
//
// A peak is a sample strictly greater than its left neighbour and greater
// than the first differing sample to its right; flat tops report their
// middle index (rounded down). The first and last samples are never peaks.
func FindPeaks(x []float64, opts PeakOptions) []int {
	var peaks []int
	iMax := len(x) - 1
	for i := 1; i < iMax; i++ {
		if !(x[i-1] < x[i]) {
			continue
		}
		ahead := i + 1
		for ahead < iMax && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			left, right := i, ahead-1
			peaks = append(peaks, (left+right)/2)
			i = ahead
		}
	}

	kept := peaks[:0]
	for _, p := range peaks {
		if x[p] >= opts.Height {
			kept = append(kept, p)
		}
	}
	peaks = kept

	if opts.Distance > 1 && len(peaks) > 1 {
		peaks = selectByDistance(x, peaks, opts.Distance)
	}
	return peaks
}

// selectByDistance drops peaks closer than distance samples to a higher
// peak, visiting peaks from highest to lowest.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for k := len(order) - 1; k >= 0; k-- {
		j := order[k]
		if !keep[j] {
			continue
		}
		for l := j - 1; l >= 0 && peaks[j]-peaks[l] < distance; l-- {
			keep[l] = false
		}
		for r := j + 1; r < len(peaks) && peaks[r]-peaks[j] < distance; r++ {
			keep[r] = false
		}
	}

	var out []int
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// ExtractSpikeTimes returns the times of the peaks of signal at or above
// height. Sample i of signal is taken at time[i], so time may be longer
// than signal but not shorter.
func ExtractSpikeTimes(signal, time []float64, height float64) ([]float64, error) {
	if len(time) < len(signal) {
		return nil, fmt.Errorf("%w: signal (%d,) and time (%d,)", ErrShapeMismatch, len(signal), len(time))
	}
	peaks := FindPeaks(signal, PeakOptions{Height: height})
	times := make([]float64, len(peaks))
	for i, p := range peaks {
		times[i] = time[p]
	}
	return times, nil
}

// NewSpikeTrain builds a spike train ending at tStop. Every spike time must
// lie in [0, tStop].
func NewSpikeTrain(times []float64, tStop float64) (SpikeTrain, error) {
	sorted := append([]float64(nil), times...)
	sort.Float64s(sorted)
	for _, t := range sorted {
		if t < 0 || t > tStop || math.IsNaN(t) {
			return SpikeTrain{}, fmt.Errorf("%w: spike at %g outside [0, %g]", ErrInvalidSpikeTrain, t, tStop)
		}
	}
	return SpikeTrain{Times: sorted, TStop: tStop}, nil
}

// VanRossumDistance returns the matrix of pairwise Van Rossum distances
// between trains for an exponential kernel with time constant tau.
//
// The squared distance between trains u and v is K(u,u) + K(v,v) - 2K(u,v)
// where K sums exp(-|a-b|/tau) over all spike pairs, so a single spike
// against an empty train is 1 apart. At tau=0 every entry is
// sqrt(n_u + n_v) and at tau=+Inf it is |n_u - n_v|, n being spike counts.
func VanRossumDistance(trains []SpikeTrain, tau float64) *mat.Dense {
	n := len(trains)
	d := mat.NewDense(n, n, nil)
	if tau == 0 {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				d.Set(i, j, math.Sqrt(float64(len(trains[i].Times)+len(trains[j].Times))))
			}
		}
		return d
	}

	k := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := summedKernel(trains[i].Times, trains[j].Times, tau)
			k.Set(i, j, s)
			k.Set(j, i, s)
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sq := k.At(i, i) + k.At(j, j) - k.At(i, j) - k.At(j, i)
			d.Set(i, j, math.Sqrt(math.Max(sq, 0)))
		}
	}
	return d
}

func summedKernel(a, b []float64, tau float64) float64 {
	var sum float64
	for _, x := range a {
		for _, y := range b {
			sum += kernel(math.Abs(x-y), tau)
		}
	}
	return sum
}

// kernel is exp(-d/tau); tau=+Inf counts every pair.
func kernel(d, tau float64) float64 {
	if math.IsInf(tau, 1) {
		return 1
	}
	return math.Exp(-d / tau)
}

// ComputeVanRossum converts both signals to spike trains bounded by the
// final timestamp and returns their Van Rossum distance. Two empty signals
// yield two empty trains, 0 apart for any positive tau.
func ComputeVanRossum(yTrue, yPred, time []float64, tau, height float64) (float64, error) {
	if err := CheckBroadcast(yTrue, yPred); err != nil {
		return 0, err
	}
	if len(time) == 0 {
		return 0, fmt.Errorf("%w: empty time vector", ErrShapeMismatch)
	}
	if tau < 0 || math.IsNaN(tau) {
		return 0, fmt.Errorf("tau must be non-negative, got %g", tau)
	}
	a, b := broadcast(yTrue, yPred)

	tStop := time[len(time)-1]
	trains := make([]SpikeTrain, 2)
	for i, signal := range [][]float64{a, b} {
		times, err := ExtractSpikeTimes(signal, time, height)
		if err != nil {
			return 0, err
		}
		trains[i], err = NewSpikeTrain(times, tStop)
		if err != nil {
			return 0, err
		}
	}

	return VanRossumDistance(trains, tau).At(0, 1), nil
}
