package mesh

import (
	"fmt"
	"log/slog"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/logging"
)

// DistanceInfo summarises the element spacing of one mesh.
type DistanceInfo struct {
	Name       string
	Elements   int
	Distance   analysis.Summary // neighbour centroid distances
	EdgeLength analysis.Summary
}

// QualityInfo holds the quality values of one mesh.
type QualityInfo struct {
	Name     string
	Elements int
	Metric   QualityMetric
	Values   []float64
	Summary  analysis.Summary
}

// SeriesPaths returns the mesh bases of a resolution series, <base>_<n>
// for each n, or base alone when sims is empty.
func SeriesPaths(base string, sims []int) []string {
	if len(sims) == 0 {
		return []string{base}
	}
	paths := make([]string, len(sims))
	for i, n := range sims {
		paths[i] = fmt.Sprintf("%s_%d", base, n)
	}
	return paths
}

// DistanceInformation computes the neighbour distance and edge length
// statistics of the mesh at base, or of each mesh of the series.
func DistanceInformation(base string, sims []int, logger *slog.Logger) ([]DistanceInfo, error) {
	logger = logging.OrDiscard(logger)

	var out []DistanceInfo
	for _, path := range SeriesPaths(base, sims) {
		m, err := ReadTetGen(path)
		if err != nil {
			return nil, err
		}
		info := DistanceInfo{
			Name:       m.Name,
			Elements:   m.NumElements(),
			Distance:   analysis.Summarize(NeighbourDistances(m)),
			EdgeLength: analysis.Summarize(EdgeLengths(m)),
		}
		logger.Info("mesh distances", "mesh", info.Name,
			"distance_mean", info.Distance.Mean, "distance_std", info.Distance.Std,
			"edge_mean", info.EdgeLength.Mean, "edge_std", info.EdgeLength.Std)
		out = append(out, info)
	}
	return out, nil
}

// QualityInformation computes metric over the mesh at base, or over each
// mesh of the series.
func QualityInformation(base string, metric QualityMetric, sims []int, logger *slog.Logger) ([]QualityInfo, error) {
	logger = logging.OrDiscard(logger)

	var out []QualityInfo
	for _, path := range SeriesPaths(base, sims) {
		m, err := ReadTetGen(path)
		if err != nil {
			return nil, err
		}
		values, err := Quality(m, metric)
		if err != nil {
			return nil, err
		}
		info := QualityInfo{
			Name:     m.Name,
			Elements: m.NumElements(),
			Metric:   metric,
			Values:   values,
			Summary:  analysis.Summarize(values),
		}
		logger.Info("mesh quality", "mesh", info.Name, "metric", metric,
			"mean", info.Summary.Mean, "std", info.Summary.Std)
		out = append(out, info)
	}
	return out, nil
}

// MeanSpacing returns the mean neighbour centroid distance of the mesh at
// base.
func MeanSpacing(base string) (float64, error) {
	m, err := ReadTetGen(base)
	if err != nil {
		return 0, err
	}
	return analysis.Summarize(NeighbourDistances(m)).Mean, nil
}
