package report

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/pipeline"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
)

var nanColor = color.Gray{Y: 200}

// comparisonGrid lays out a comparison result as a heat map grid with one
// column per channel and one row per stage.
type comparisonGrid struct {
	values [][]float64 // values[stage][channel]
	cols   int
}

func (g comparisonGrid) Dims() (c, r int) { return g.cols, len(g.values) }
func (g comparisonGrid) X(c int) float64    { return float64(c) }
func (g comparisonGrid) Y(r int) float64    { return float64(r) }
func (g comparisonGrid) Z(c, r int) float64 {
	if c >= len(g.values[r]) {
		return math.NaN()
	}
	return g.values[r][c]
}

// zRange returns the finite min and max of the grid, widened to a unit
// range when all values are equal.
func (g comparisonGrid) zRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.values {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

// PlotComparisonHeatmap plots the idealised versus realistic metric of
// every stage and channel, annotating each cell with its value.
func PlotComparisonHeatmap(res *pipeline.ComparisonResult, opts Options) ([]byte, error) {
	if res == nil || len(res.Stages) == 0 {
		return nil, fmt.Errorf("no comparison results to plot heatmap")
	}

	grid := comparisonGrid{values: make([][]float64, len(res.Stages))}
	for r, sc := range res.Stages {
		grid.values[r] = sc.Channels
		grid.cols = max(grid.cols, len(sc.Channels))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Idealised vs realistic %s", res.Metric.Label())
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Estrus stage"

	yTicks := make([]plot.Tick, len(res.Stages))
	for i, sc := range res.Stages {
		yTicks[i] = plot.Tick{Value: float64(i), Label: capitalize(sc.Stage)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(res.Stages)) - 0.5

	xTicks := make([]plot.Tick, grid.cols)
	for c := range xTicks {
		label := strconv.Itoa(c)
		if c < len(constants.ChannelNames) {
			label = capitalize(constants.ChannelNames[c])
		}
		xTicks[c] = plot.Tick{Value: float64(c), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = -0.5
	p.X.Max = float64(grid.cols) - 0.5

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = grid.zRange()
	hm.NaN = nanColor
	p.Add(hm)

	var labels plotter.XYLabels
	for r, row := range grid.values {
		for c, v := range row {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, strconv.FormatFloat(v, 'f', 3, 64))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("failed to create heatmap labels: %w", err)
	}
	p.Add(l)

	return encode(p, opts)
}
