package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/mesh"
	"github.com/virtual-uterus/symprobe/internal/parser"
	"github.com/virtual-uterus/symprobe/internal/pipeline"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func isPNG(t *testing.T, data []byte) {
	t.Helper()
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("output is not a PNG (%d bytes)", len(data))
	}
}

func testTrace() *parser.Trace {
	v := mat.NewDense(4, 3, []float64{
		-70, -70, -70,
		-20, -70, -70,
		-70, -20, -70,
		-70, -70, -20,
	})
	return &parser.Trace{V: v, T: []float64{0, 1, 2, 3}, CellIDs: []int{1, 2, 3}, Mesh: "test"}
}

func TestPlotCellData(t *testing.T) {
	data, err := PlotCellData(testTrace(), 0, "estrus", DefaultOptions())
	if err != nil {
		t.Fatalf("PlotCellData() error = %v", err)
	}
	isPNG(t, data)

	if _, err := PlotCellData(testTrace(), 5, "estrus", DefaultOptions()); err == nil {
		t.Error("expected error for out of range channel")
	}
	if _, err := PlotCellData(nil, 0, "estrus", DefaultOptions()); err == nil {
		t.Error("expected error for nil trace")
	}
}

func TestPlotCellComparison(t *testing.T) {
	data, err := PlotCellComparison(testTrace(), testTrace(), 2, "diestrus", DefaultOptions())
	if err != nil {
		t.Fatalf("PlotCellComparison() error = %v", err)
	}
	isPNG(t, data)

	short := &parser.Trace{V: mat.NewDense(1, 3, nil), T: []float64{0}}
	if _, err := PlotCellComparison(testTrace(), short, 0, "estrus", DefaultOptions()); err == nil {
		t.Error("expected error for mismatched timesteps")
	}
}

func TestPlotResolutionConvergence(t *testing.T) {
	res := &pipeline.ResolutionResult{
		Metric: analysis.MetricRMSE,
		Sims:   []int{1, 2, 3},
		Series: []pipeline.ResolutionSeries{
			{Stage: "estrus", Elements: []float64{1258, 9984, 14976}, Comparison: []float64{2.5, 0.7, 0}},
			{Stage: "diestrus", Elements: []float64{1258, 9984, 14976}, Comparison: []float64{3.1, math.NaN(), 0}},
		},
	}
	data, err := PlotResolutionConvergence(res, DefaultOptions())
	if err != nil {
		t.Fatalf("PlotResolutionConvergence() error = %v", err)
	}
	isPNG(t, data)

	if _, err := PlotResolutionConvergence(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil result")
	}
}

func parameterResult() *pipeline.ParameterResult {
	return &pipeline.ParameterResult{
		Metric:    analysis.MetricVRD,
		Parameter: "gcal",
		Sims:      []int{1, 2, 3},
		Series: []pipeline.ParameterSeries{
			{Stage: "estrus", Values: []float64{0.5, 0.6, 0.7}, Comparison: []float64{0, 1.2, 2.4}, Spikes: []int{3, 2, 0}},
		},
	}
}

func TestPlotParameterSweep(t *testing.T) {
	res := parameterResult()
	data, err := PlotParameterComparison(res, DefaultOptions())
	if err != nil {
		t.Fatalf("PlotParameterComparison() error = %v", err)
	}
	isPNG(t, data)

	data, err = PlotSpikePropagation(res, DefaultOptions())
	if err != nil {
		t.Fatalf("PlotSpikePropagation() error = %v", err)
	}
	isPNG(t, data)
}

func comparisonResult() *pipeline.ComparisonResult {
	return &pipeline.ComparisonResult{
		Metric: analysis.MetricMAE,
		Stages: []pipeline.StageComparison{
			{Stage: "proestrus", Sim: 1, Channels: []float64{1, 2, 3}, Mean: 2, Std: 0.816},
			{Stage: "estrus", Sim: 2, Channels: []float64{0.5, math.NaN(), 1.5}, Mean: 1, Std: 0.5},
		},
	}
}

func TestPlotComparisonHeatmap(t *testing.T) {
	data, err := PlotComparisonHeatmap(comparisonResult(), DefaultOptions())
	if err != nil {
		t.Fatalf("PlotComparisonHeatmap() error = %v", err)
	}
	isPNG(t, data)

	if _, err := PlotComparisonHeatmap(&pipeline.ComparisonResult{}, DefaultOptions()); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestComparisonGridRange(t *testing.T) {
	tests := []struct {
		name   string
		values [][]float64
		lo, hi float64
	}{
		{"spread", [][]float64{{1, 4}, {2, math.NaN()}}, 1, 4},
		{"constant", [][]float64{{2, 2}}, 2, 3},
		{"all nan", [][]float64{{math.NaN()}}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := comparisonGrid{values: tt.values, cols: 2}.zRange()
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("zRange() = (%v, %v), want (%v, %v)", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func qualityInfos() []mesh.QualityInfo {
	return []mesh.QualityInfo{
		{Name: "scaffold_1", Elements: 1258, Metric: mesh.AspectRatio, Values: []float64{1, 1.2, 1.5, math.Inf(1), 2}},
		{Name: "scaffold_2", Elements: 9984, Metric: mesh.AspectRatio, Values: []float64{1, 1.1, 1.3, 1.4}},
	}
}

func TestPlotMeshQuality(t *testing.T) {
	infos := qualityInfos()
	data, err := PlotSingleMeshQuality(infos[0], DefaultOptions())
	if err != nil {
		t.Fatalf("PlotSingleMeshQuality() error = %v", err)
	}
	isPNG(t, data)

	data, err = PlotMultiMeshQuality(infos, DefaultOptions())
	if err != nil {
		t.Fatalf("PlotMultiMeshQuality() error = %v", err)
	}
	isPNG(t, data)

	degenerate := mesh.QualityInfo{Name: "flat", Metric: mesh.AspectRatio, Values: []float64{math.Inf(1)}}
	if _, err := PlotSingleMeshQuality(degenerate, DefaultOptions()); err == nil {
		t.Error("expected error when no value is finite")
	}
	if _, err := PlotMultiMeshQuality(nil, DefaultOptions()); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestSVGOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = "svg"
	data, err := PlotCellData(testTrace(), 1, "metestrus", opts)
	if err != nil {
		t.Fatalf("PlotCellData() error = %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("expected SVG output")
	}
}

func TestWriteFigure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	path, err := WriteFigure(dir, "heatmap", "png", pngMagic)
	if err != nil {
		t.Fatalf("WriteFigure() error = %v", err)
	}
	if want := filepath.Join(dir, "heatmap.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, pngMagic) {
		t.Error("written figure differs from input")
	}

	if _, err := WriteFigure(dir, "empty", "png", nil); err == nil {
		t.Error("expected error for empty figure")
	}
}

func TestTables(t *testing.T) {
	pt := ParameterTable(parameterResult())
	if len(pt.Rows) != 3 {
		t.Fatalf("ParameterTable rows = %d, want 3", len(pt.Rows))
	}
	if !pt.Highlight(2, 3) || pt.Highlight(0, 3) || pt.Highlight(2, 0) {
		t.Error("only the silent spike count should be highlighted")
	}

	ct := ComparisonTable(comparisonResult())
	if len(ct.Headers) != 7 {
		t.Fatalf("ComparisonTable headers = %v", ct.Headers)
	}
	if got := ct.Rows[1][3]; got != "n/a" {
		t.Errorf("NaN cell = %q, want n/a", got)
	}
	if got := ct.Rows[0][2]; got != "1.000" {
		t.Errorf("ovary cell = %q, want 1.000", got)
	}

	qt := QualityTable(qualityInfos())
	if qt.Title != "Aspect Ratio" || len(qt.Rows) != 2 {
		t.Errorf("QualityTable = %q with %d rows", qt.Title, len(qt.Rows))
	}

	dt := DistanceTable([]mesh.DistanceInfo{{Name: "m", Elements: 2}})
	if len(dt.Rows) != 2 {
		t.Errorf("DistanceTable rows = %d, want 2", len(dt.Rows))
	}
}

func TestBuildPDFReport(t *testing.T) {
	heatmap, err := PlotComparisonHeatmap(comparisonResult(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	r := Report{
		Title:      "Comparison",
		Parameters: [][2]string{{"Metric", "mae"}, {"Estrus", "all"}},
		Tables:     []Table{ComparisonTable(comparisonResult())},
		Figures: []Figure{
			{Key: "heatmap", Title: "Heatmap", Caption: "MAE per channel", Data: heatmap, Format: "png"},
			{Key: "missing", Title: "Missing"},
		},
	}
	if err := BuildPDFReport(path, r); err != nil {
		t.Fatalf("BuildPDFReport() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestBuildPDFReport_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := BuildPDFReport(path, Report{}); err != nil {
		t.Fatalf("BuildPDFReport() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestBuildPDFReport_WriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	for name, r := range map[string]Report{
		"empty":  {},
		"tables": {Tables: []Table{{Title: "T", Headers: []string{"A"}, Rows: [][]string{{"1"}}}}},
	} {
		t.Run(name, func(t *testing.T) {
			err := BuildPDFReport(filepath.Join(dir, name+".pdf"), r)
			if err == nil || !strings.Contains(err.Error(), "failed to write PDF report") {
				t.Errorf("BuildPDFReport() error = %v, want wrapped write error", err)
			}
		})
	}
}
