package mesh

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func writeMesh(t *testing.T, base, node, ele string) {
	t.Helper()
	if err := os.WriteFile(base+".node", []byte(node), 0644); err != nil {
		t.Fatalf("failed to write node file: %v", err)
	}
	if err := os.WriteFile(base+".ele", []byte(ele), 0644); err != nil {
		t.Fatalf("failed to write ele file: %v", err)
	}
}

// Regular tetrahedron with edge 2*sqrt(2), numbered from 1.
const regularNode = `# regular tetrahedron
4 3 0 0
1  1  1  1
2  1 -1 -1
3 -1 -1  1
4 -1  1 -1
`

const regularEle = `1 4 0
1 1 2 3 4 # positive orientation
`

// Two unit-corner tetrahedra sharing the face {1, 2, 3}, numbered from 0.
const pairNode = `5 3 0 0
0 0 0 0
1 1 0 0
2 0 1 0
3 0 0 1
4 1 1 1
`

const pairEle = `2 4 0
0 0 1 2 3
1 1 2 3 4
`

func regular() *Mesh {
	return &Mesh{
		Nodes:    []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: -1}},
		Elements: [][4]int{{0, 1, 2, 3}},
	}
}

func TestReadTetGen(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "regular")
	writeMesh(t, base, regularNode, regularEle)

	m, err := ReadTetGen(base)
	if err != nil {
		t.Fatalf("ReadTetGen failed: %v", err)
	}
	if m.Name != "regular" {
		t.Errorf("Name = %q", m.Name)
	}
	if len(m.Nodes) != 4 || m.NumElements() != 1 {
		t.Fatalf("got %d nodes, %d elements", len(m.Nodes), m.NumElements())
	}
	if m.Elements[0] != [4]int{0, 1, 2, 3} {
		t.Errorf("element = %v, want zero-based indices", m.Elements[0])
	}
	if m.Nodes[3] != (r3.Vec{X: -1, Y: 1, Z: -1}) {
		t.Errorf("node 3 = %v", m.Nodes[3])
	}
}

func TestReadTetGen_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadTetGen(filepath.Join(dir, "absent")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	tests := []struct {
		name string
		node string
		ele  string
	}{
		{"empty node file", "# nothing\n", regularEle},
		{"two dimensional", "3 2 0 0\n1 0 0\n2 1 0\n3 0 1\n", regularEle},
		{"missing nodes", "4 3 0 0\n1 0 0 0\n", regularEle},
		{"bad coordinate", "1 3 0 0\n1 0 x 0\n", "0 4 0\n"},
		{"node out of range", regularNode, "1 4 0\n1 1 2 3 9\n"},
		{"triangles", regularNode, "1 3 0\n1 1 2 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := filepath.Join(dir, "bad")
			writeMesh(t, base, tt.node, tt.ele)
			if _, err := ReadTetGen(base); !errors.Is(err, ErrMalformedMesh) {
				t.Errorf("expected ErrMalformedMesh, got %v", err)
			}
		})
	}
}

func TestQuality_RegularTetrahedron(t *testing.T) {
	m := regular()
	for _, metric := range []QualityMetric{AspectRatio, ScaledJacobian, MeanRatio} {
		q, err := Quality(m, metric)
		if err != nil {
			t.Fatalf("%s: %v", metric, err)
		}
		if math.Abs(q[0]-1) > tol {
			t.Errorf("%s = %g, want 1", metric, q[0])
		}
	}

	jac, err := Quality(m, Jacobian)
	if err != nil {
		t.Fatalf("jacobian: %v", err)
	}
	if math.Abs(jac[0]-16) > tol {
		t.Errorf("jacobian = %g, want 16", jac[0])
	}
}

func TestQuality_DistortedTetrahedron(t *testing.T) {
	m := &Mesh{
		Nodes:    []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Elements: [][4]int{{0, 1, 2, 3}},
	}
	for _, metric := range []QualityMetric{ScaledJacobian, MeanRatio} {
		q, _ := Quality(m, metric)
		if !(q[0] > 0 && q[0] < 1) {
			t.Errorf("%s = %g, want in (0, 1)", metric, q[0])
		}
	}
	ar, _ := Quality(m, AspectRatio)
	if ar[0] <= 1 {
		t.Errorf("aspect ratio = %g, want > 1", ar[0])
	}

	// Swapping two corners inverts the element.
	m.Elements[0] = [4]int{0, 2, 1, 3}
	if mr, _ := Quality(m, MeanRatio); mr[0] != 0 {
		t.Errorf("inverted mean ratio = %g, want 0", mr[0])
	}
	if sj, _ := Quality(m, ScaledJacobian); sj[0] >= 0 {
		t.Errorf("inverted scaled jacobian = %g, want < 0", sj[0])
	}
}

func TestQuality_Degenerate(t *testing.T) {
	m := &Mesh{
		Nodes:    []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}},
		Elements: [][4]int{{0, 1, 2, 3}},
	}
	ar, _ := Quality(m, AspectRatio)
	if !math.IsInf(ar[0], 1) {
		t.Errorf("flat aspect ratio = %g, want +Inf", ar[0])
	}
}

func TestQuality_UnknownMetric(t *testing.T) {
	if _, err := Quality(regular(), "skew"); !errors.Is(err, ErrUnknownQualityMetric) {
		t.Errorf("expected ErrUnknownQualityMetric, got %v", err)
	}
}

func TestParseQualityMetric(t *testing.T) {
	for in, want := range map[string]QualityMetric{
		"aspect_ratio":    AspectRatio,
		"Scaled Jacobian": ScaledJacobian,
		"mean-ratio":      MeanRatio,
		"JACOBIAN":        Jacobian,
	} {
		got, err := ParseQualityMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseQualityMetric(%q) = %q, %v", in, got, err)
		}
	}
	if ScaledJacobian.Title() != "Scaled Jacobian" {
		t.Errorf("Title = %q", ScaledJacobian.Title())
	}
}

func TestNeighbourDistances(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "pair")
	writeMesh(t, base, pairNode, pairEle)

	m, err := ReadTetGen(base)
	if err != nil {
		t.Fatalf("ReadTetGen failed: %v", err)
	}

	neighbours := FaceNeighbours(m)
	if len(neighbours[0]) != 1 || neighbours[0][0] != 1 {
		t.Errorf("neighbours of 0 = %v, want [1]", neighbours[0])
	}

	d := NeighbourDistances(m)
	want := math.Sqrt(3) / 4
	for e, got := range d {
		if math.Abs(got-want) > tol {
			t.Errorf("distance[%d] = %g, want %g", e, got, want)
		}
	}

	if d := NeighbourDistances(regular()); !math.IsNaN(d[0]) {
		t.Errorf("isolated element distance = %g, want NaN", d[0])
	}
}

func TestEdgeLengths(t *testing.T) {
	lengths := EdgeLengths(regular())
	if len(lengths) != 6 {
		t.Fatalf("got %d edges, want 6", len(lengths))
	}
	for _, l := range lengths {
		if math.Abs(l-2*math.Sqrt2) > tol {
			t.Errorf("edge = %g, want %g", l, 2*math.Sqrt2)
		}
	}
}

func TestDistanceInformation_Series(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "scaffold")
	writeMesh(t, base+"_1", pairNode, pairEle)
	writeMesh(t, base+"_2", regularNode, regularEle)

	infos, err := DistanceInformation(base, []int{1, 2}, nil)
	if err != nil {
		t.Fatalf("DistanceInformation failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d infos, want 2", len(infos))
	}
	if infos[0].Name != "scaffold_1" || infos[0].Elements != 2 {
		t.Errorf("info[0] = %+v", infos[0])
	}
	if math.Abs(infos[0].Distance.Mean-math.Sqrt(3)/4) > tol {
		t.Errorf("mean distance = %g", infos[0].Distance.Mean)
	}
	if infos[1].Distance.N != 0 {
		t.Errorf("single element mesh should have no distances, got N=%d", infos[1].Distance.N)
	}
	if infos[1].EdgeLength.N != 6 {
		t.Errorf("edge count = %d, want 6", infos[1].EdgeLength.N)
	}

	spacing, err := MeanSpacing(base + "_1")
	if err != nil {
		t.Fatalf("MeanSpacing failed: %v", err)
	}
	if math.Abs(spacing-math.Sqrt(3)/4) > tol {
		t.Errorf("spacing = %g", spacing)
	}
}

func TestQualityInformation_Single(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "regular")
	writeMesh(t, base, regularNode, regularEle)

	infos, err := QualityInformation(base, MeanRatio, nil, nil)
	if err != nil {
		t.Fatalf("QualityInformation failed: %v", err)
	}
	if len(infos) != 1 || math.Abs(infos[0].Summary.Mean-1) > tol {
		t.Errorf("infos = %+v", infos)
	}
}
