package report

import (
	"math"
	"strconv"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/mesh"
	"github.com/virtual-uterus/symprobe/internal/pipeline"
)

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func summaryCells(s analysis.Summary) []string {
	return []string{
		strconv.Itoa(s.N),
		formatValue(s.Mean),
		formatValue(s.Std),
		formatValue(s.Min),
		formatValue(s.Median),
		formatValue(s.Max),
	}
}

var summaryHeaders = []string{"N", "Mean", "Std", "Min", "Median", "Max"}

// ResolutionTable lists the convergence metric of every stage and mesh.
func ResolutionTable(res *pipeline.ResolutionResult) Table {
	t := Table{
		Title:   "Mesh convergence",
		Headers: []string{"Stage", "Sim", "Elements", res.Metric.Label()},
	}
	for _, s := range res.Series {
		for i := range s.Comparison {
			sim := ""
			if i < len(res.Sims) {
				sim = strconv.Itoa(res.Sims[i])
			}
			t.Rows = append(t.Rows, []string{
				capitalize(s.Stage), sim, strconv.FormatFloat(s.Elements[i], 'f', -1, 64), formatValue(s.Comparison[i]),
			})
		}
	}
	return t
}

// ParameterTable lists the comparison metric and propagated spike count of
// every stage and parameter value. Rows where no spike reached the
// cervical end are highlighted.
func ParameterTable(res *pipeline.ParameterResult) Table {
	t := Table{
		Title:   "Parameter sweep " + constants.ParamAxisLabel(res.Parameter),
		Headers: []string{"Stage", "Value", res.Metric.Label(), "Spikes"},
	}
	var silent []bool
	for _, s := range res.Series {
		for i := range s.Values {
			t.Rows = append(t.Rows, []string{
				capitalize(s.Stage), formatValue(s.Values[i]), formatValue(s.Comparison[i]), strconv.Itoa(s.Spikes[i]),
			})
			silent = append(silent, s.Spikes[i] == 0)
		}
	}
	t.Highlight = func(row, col int) bool { return col == 3 && silent[row] }
	return t
}

// ComparisonTable lists the per-channel metric, mean and standard
// deviation of every stage.
func ComparisonTable(res *pipeline.ComparisonResult) Table {
	headers := []string{"Stage", "Sim"}
	for _, name := range constants.ChannelNames {
		headers = append(headers, capitalize(name))
	}
	headers = append(headers, "Mean", "Std")

	t := Table{Title: "Idealised vs realistic " + res.Metric.Label(), Headers: headers}
	for _, sc := range res.Stages {
		row := []string{capitalize(sc.Stage), strconv.Itoa(sc.Sim)}
		for j := range constants.ChannelNames {
			v := math.NaN()
			if j < len(sc.Channels) {
				v = sc.Channels[j]
			}
			row = append(row, formatValue(v))
		}
		row = append(row, formatValue(sc.Mean), formatValue(sc.Std))
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CellTable lists the propagation velocity of every loaded simulation.
func CellTable(res *pipeline.CellResult) Table {
	t := Table{Title: "Propagation velocity", Headers: []string{"Stage", "Sim", "Mesh", "Velocity (mm/s)"}}
	for _, ct := range res.Traces {
		meshName := ""
		if ct.Trace != nil {
			meshName = ct.Trace.Mesh
		}
		t.Rows = append(t.Rows, []string{capitalize(ct.Stage), strconv.Itoa(ct.Sim), meshName, formatValue(ct.Velocity)})
	}
	return t
}

// DistanceTable summarises neighbour distances and edge lengths per mesh.
func DistanceTable(infos []mesh.DistanceInfo) Table {
	t := Table{Title: "Element spacing", Headers: append([]string{"Mesh", "Elements", "Measure"}, summaryHeaders...)}
	for _, info := range infos {
		for _, m := range []struct {
			name string
			s    analysis.Summary
		}{{"Distance", info.Distance}, {"Edge length", info.EdgeLength}} {
			row := []string{info.Name, strconv.Itoa(info.Elements), m.name}
			t.Rows = append(t.Rows, append(row, summaryCells(m.s)...))
		}
	}
	return t
}

// QualityTable summarises one quality metric per mesh.
func QualityTable(infos []mesh.QualityInfo) Table {
	title := "Mesh quality"
	if len(infos) > 0 {
		title = infos[0].Metric.Title()
	}
	t := Table{Title: title, Headers: append([]string{"Mesh", "Elements"}, summaryHeaders...)}
	for _, info := range infos {
		row := []string{info.Name, strconv.Itoa(info.Elements)}
		t.Rows = append(t.Rows, append(row, summaryCells(info.Summary)...))
	}
	return t
}
