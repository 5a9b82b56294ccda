package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Quality returns the value of metric for every element of m. Aspect
// ratio, scaled Jacobian and mean ratio are 1 for a regular tetrahedron.
func Quality(m *Mesh, metric QualityMetric) ([]float64, error) {
	var fn func([4]r3.Vec) float64
	switch metric {
	case AspectRatio:
		fn = tetAspectRatio
	case Jacobian:
		fn = tetJacobian
	case ScaledJacobian:
		fn = tetScaledJacobian
	case MeanRatio:
		fn = tetMeanRatio
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownQualityMetric, metric)
	}

	out := make([]float64, m.NumElements())
	for e := range out {
		out[e] = fn(m.Tet(e))
	}
	return out, nil
}

// tetJacobian is (p1-p0) . ((p2-p0) x (p3-p0)), six times the signed
// volume.
func tetJacobian(p [4]r3.Vec) float64 {
	return r3.Dot(r3.Sub(p[1], p[0]), r3.Cross(r3.Sub(p[2], p[0]), r3.Sub(p[3], p[0])))
}

// tetAspectRatio is the longest edge over 2*sqrt(6) times the inradius.
// Degenerate elements have an infinite aspect ratio.
func tetAspectRatio(p [4]r3.Vec) float64 {
	var hMax float64
	for _, e := range tetEdges {
		hMax = math.Max(hMax, r3.Norm(r3.Sub(p[e[1]], p[e[0]])))
	}

	var area float64
	for _, f := range tetFaces {
		n := r3.Cross(r3.Sub(p[f[1]], p[f[0]]), r3.Sub(p[f[2]], p[f[0]]))
		area += r3.Norm(n) / 2
	}

	volume := math.Abs(tetJacobian(p)) / 6
	if volume == 0 || area == 0 {
		return math.Inf(1)
	}
	inradius := 3 * volume / area
	return hMax / (2 * math.Sqrt(6) * inradius)
}

// tetScaledJacobian normalises the Jacobian by the largest product of the
// three edge lengths meeting at a corner.
func tetScaledJacobian(p [4]r3.Vec) float64 {
	jac := tetJacobian(p)

	l0 := r3.Norm(r3.Sub(p[1], p[0]))
	l1 := r3.Norm(r3.Sub(p[2], p[1]))
	l2 := r3.Norm(r3.Sub(p[0], p[2]))
	l3 := r3.Norm(r3.Sub(p[3], p[0]))
	l4 := r3.Norm(r3.Sub(p[3], p[1]))
	l5 := r3.Norm(r3.Sub(p[3], p[2]))

	lambda := math.Max(jac, l0*l2*l3)
	lambda = math.Max(lambda, l0*l1*l4)
	lambda = math.Max(lambda, l1*l2*l5)
	lambda = math.Max(lambda, l3*l4*l5)
	if lambda == 0 {
		return 0
	}
	return jac * math.Sqrt2 / lambda
}

// tetMeanRatio is 12 (3V)^(2/3) over the sum of squared edge lengths, and
// 0 for inverted or flat elements.
func tetMeanRatio(p [4]r3.Vec) float64 {
	jac := tetJacobian(p)
	if jac <= 0 {
		return 0
	}

	var sumSq float64
	for _, e := range tetEdges {
		sumSq += r3.Norm2(r3.Sub(p[e[1]], p[e[0]]))
	}
	volume := jac / 6
	return 12 * math.Pow(3*volume, 2.0/3) / sumSq
}
