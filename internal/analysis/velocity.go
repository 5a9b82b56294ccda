package analysis

import (
	"fmt"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// EstimateVelocity estimates the propagation velocity, in mm/s, from the
// ovarian to the cervical end of the horn using the first spike at each
// end. v must already be in canonical channel order.
func EstimateVelocity(v *mat.Dense, t []float64, mesh string, height float64) (float64, error) {
	length, ok := constants.HornLengths[mesh]
	if !ok {
		return 0, fmt.Errorf("%w %q: no horn length", ErrUnknownMesh, mesh)
	}
	if _, cols := v.Dims(); cols <= constants.Cervix {
		return 0, fmt.Errorf("%w: need %d channels, got %d", ErrShapeMismatch, constants.Cervix+1, cols)
	}

	cvx, err := ExtractSpikeTimes(mat.Col(nil, constants.Cervix, v), t, height)
	if err != nil {
		return 0, err
	}
	if len(cvx) == 0 {
		return 0, fmt.Errorf("%w at the cervical end", ErrNoSpikes)
	}

	ova, err := ExtractSpikeTimes(mat.Col(nil, constants.Ovary, v), t, height)
	if err != nil {
		return 0, err
	}
	if len(ova) == 0 {
		return 0, fmt.Errorf("%w at the ovarian end", ErrNoSpikes)
	}

	return length / (cvx[0] - ova[0]), nil
}
