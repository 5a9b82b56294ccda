package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Centroids returns the centroid of every element.
func Centroids(m *Mesh) []r3.Vec {
	out := make([]r3.Vec, m.NumElements())
	for e := range out {
		tet := m.Tet(e)
		c := r3.Add(r3.Add(tet[0], tet[1]), r3.Add(tet[2], tet[3]))
		out[e] = r3.Scale(0.25, c)
	}
	return out
}

type face [3]int

func faceKey(a, b, c int) face {
	f := []int{a, b, c}
	sort.Ints(f)
	return face{f[0], f[1], f[2]}
}

// tetFaces lists the corner triples of the four faces of a tetrahedron.
var tetFaces = [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}

// FaceNeighbours returns, for each element, the elements sharing one of
// its faces.
func FaceNeighbours(m *Mesh) [][]int {
	owners := make(map[face][]int, 2*m.NumElements())
	for e, el := range m.Elements {
		for _, f := range tetFaces {
			k := faceKey(el[f[0]], el[f[1]], el[f[2]])
			owners[k] = append(owners[k], e)
		}
	}

	out := make([][]int, m.NumElements())
	for e, el := range m.Elements {
		for _, f := range tetFaces {
			for _, other := range owners[faceKey(el[f[0]], el[f[1]], el[f[2]])] {
				if other != e {
					out[e] = append(out[e], other)
				}
			}
		}
	}
	return out
}

// NeighbourDistances returns, for each element, the mean distance between
// its centroid and the centroids of its face neighbours. Elements without
// neighbours get NaN.
func NeighbourDistances(m *Mesh) []float64 {
	centroids := Centroids(m)
	neighbours := FaceNeighbours(m)

	out := make([]float64, m.NumElements())
	for e, ns := range neighbours {
		if len(ns) == 0 {
			out[e] = math.NaN()
			continue
		}
		var sum float64
		for _, n := range ns {
			sum += r3.Norm(r3.Sub(centroids[e], centroids[n]))
		}
		out[e] = sum / float64(len(ns))
	}
	return out
}

// tetEdges lists the corner pairs of the six edges of a tetrahedron.
var tetEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// EdgeLengths returns the six edge lengths of every element, element by
// element. Edges shared between elements are repeated.
func EdgeLengths(m *Mesh) []float64 {
	out := make([]float64, 0, 6*m.NumElements())
	for e := range m.Elements {
		tet := m.Tet(e)
		for _, edge := range tetEdges {
			out = append(out, r3.Norm(r3.Sub(tet[edge[1]], tet[edge[0]])))
		}
	}
	return out
}
