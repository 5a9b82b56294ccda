// Package mesh reads tetrahedral TetGen meshes and computes element
// spacing and quality measures over them.
package mesh

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrMalformedMesh        = errors.New("malformed mesh file")
	ErrUnknownQualityMetric = errors.New("unknown quality metric")
)

// Mesh is a linear tetrahedral mesh.
type Mesh struct {
	Name     string
	Nodes    []r3.Vec
	Elements [][4]int // zero-based node indices
}

// NumElements returns the number of tetrahedra.
func (m *Mesh) NumElements() int {
	return len(m.Elements)
}

// Tet returns the corner coordinates of element e.
func (m *Mesh) Tet(e int) [4]r3.Vec {
	el := m.Elements[e]
	return [4]r3.Vec{m.Nodes[el[0]], m.Nodes[el[1]], m.Nodes[el[2]], m.Nodes[el[3]]}
}

// QualityMetric names a per-element quality measure.
type QualityMetric string

const (
	AspectRatio    QualityMetric = "aspect_ratio"
	Jacobian       QualityMetric = "jacobian"
	ScaledJacobian QualityMetric = "scaled_jacobian"
	MeanRatio      QualityMetric = "mean_ratio"
)

// QualityMetrics lists every supported quality metric.
var QualityMetrics = []QualityMetric{AspectRatio, Jacobian, ScaledJacobian, MeanRatio}

// ParseQualityMetric accepts the metric name with underscores, dashes or
// spaces, in any case.
func ParseQualityMetric(s string) (QualityMetric, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, m := range QualityMetrics {
		if QualityMetric(norm) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownQualityMetric, s)
}

// Title returns the display name of the metric, e.g. "Scaled Jacobian".
func (q QualityMetric) Title() string {
	words := strings.Split(string(q), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
