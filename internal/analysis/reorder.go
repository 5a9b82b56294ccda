package analysis

import (
	"fmt"
	"slices"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// Reorder permutes the columns of v, labelled by cellIDs, into the order
// given by orderedIDs. When the ids are already in order v is returned
// unchanged.
func Reorder(v *mat.Dense, cellIDs, orderedIDs []int) (*mat.Dense, error) {
	if len(cellIDs) != len(orderedIDs) {
		return nil, fmt.Errorf("%w (%d and %d)", ErrLengthMismatch, len(cellIDs), len(orderedIDs))
	}
	rows, cols := v.Dims()
	if cols != len(cellIDs) {
		return nil, fmt.Errorf("%w: %d columns for %d cell ids", ErrLengthMismatch, cols, len(cellIDs))
	}

	if slices.Equal(cellIDs, orderedIDs) {
		return v, nil
	}

	ordered := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for i, id := range orderedIDs {
		j := slices.Index(cellIDs, id)
		if j < 0 {
			return nil, fmt.Errorf("%w: %d", ErrIDMismatch, id)
		}
		mat.Col(col, j, v)
		ordered.SetCol(i, col)
	}
	return ordered, nil
}

// CanonicalOrder returns the ovary, centre, cervix point ids of mesh.
func CanonicalOrder(mesh string) ([]int, error) {
	ids, ok := constants.Points[mesh]
	if !ok {
		return nil, fmt.Errorf("%w %q: no extraction points", ErrUnknownMesh, mesh)
	}
	return ids, nil
}
