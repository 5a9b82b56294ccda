package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/parser"
	"github.com/virtual-uterus/symprobe/internal/pipeline"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Amplitude axis limits of voltage trace plots, mV.
const (
	voltageMin = -70.0
	voltageMax = 15.0
)

var comparisonGrey = color.Gray{Y: 128}

// Options sets the size and encoding of rendered figures.
type Options struct {
	Width  float64 // points
	Height float64 // points
	Format string  // png, svg or pdf
}

// DefaultOptions returns a 480x360 point PNG.
func DefaultOptions() Options {
	return Options{Width: 480, Height: 360, Format: "png"}
}

// encode renders p with opts.
func encode(p *plot.Plot, opts Options) ([]byte, error) {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	writer, err := p.WriterTo(vg.Points(opts.Width), vg.Points(opts.Height), format)
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func tracePoints(t, v []float64) plotter.XYs {
	pts := make(plotter.XYs, len(t))
	for i := range t {
		pts[i] = plotter.XY{X: t[i], Y: v[i]}
	}
	return pts
}

func newTracePlot(t []float64) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude (mV)"
	p.X.Min = 0
	if len(t) > 0 {
		p.X.Max = t[len(t)-1]
	}
	p.Y.Min = voltageMin
	p.Y.Max = voltageMax
	p.Add(plotter.NewGrid())
	return p
}

// PlotCellData plots channel j of tr in the colour of stage.
func PlotCellData(tr *parser.Trace, j int, stage string, opts Options) ([]byte, error) {
	if tr == nil || tr.NumTimesteps() == 0 {
		return nil, fmt.Errorf("no trace to plot")
	}
	if j < 0 || j >= tr.NumCells() {
		return nil, fmt.Errorf("channel %d out of range [0, %d)", j, tr.NumCells())
	}

	p := newTracePlot(tr.T)
	p.Title.Text = capitalize(stage)
	if j < len(constants.ChannelNames) {
		p.Title.Text = fmt.Sprintf("%s, %s", capitalize(stage), constants.ChannelNames[j])
	}

	line, err := plotter.NewLine(tracePoints(tr.T, tr.Channel(j)))
	if err != nil {
		return nil, fmt.Errorf("failed to create line for channel %d: %w", j, err)
	}
	line.Color = constants.StageColour(stage)
	line.Width = vg.Points(1.5)
	p.Add(line)

	return encode(p, opts)
}

// PlotCellComparison overlays channel j of an idealised and a realistic
// simulation.
func PlotCellComparison(idealised, realistic *parser.Trace, j int, stage string, opts Options) ([]byte, error) {
	if idealised == nil || realistic == nil {
		return nil, fmt.Errorf("no trace to plot")
	}
	if idealised.NumTimesteps() != realistic.NumTimesteps() {
		return nil, fmt.Errorf("dimensions must agree: %d and %d timesteps",
			idealised.NumTimesteps(), realistic.NumTimesteps())
	}
	if j < 0 || j >= idealised.NumCells() || j >= realistic.NumCells() {
		return nil, fmt.Errorf("channel %d out of range", j)
	}

	p := newTracePlot(idealised.T)
	p.Title.Text = capitalize(stage)

	idealLine, err := plotter.NewLine(tracePoints(idealised.T, idealised.Channel(j)))
	if err != nil {
		return nil, fmt.Errorf("failed to create idealised line: %w", err)
	}
	idealLine.Color = constants.StageColour(stage)
	idealLine.Width = vg.Points(1.5)

	realLine, err := plotter.NewLine(tracePoints(idealised.T, realistic.Channel(j)))
	if err != nil {
		return nil, fmt.Errorf("failed to create realistic line: %w", err)
	}
	realLine.Color = comparisonGrey
	realLine.Width = vg.Points(1.5)
	realLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(idealLine, realLine)
	p.Legend.Add("Idealised", idealLine)
	p.Legend.Add("Realistic", realLine)
	p.Legend.Top = true

	return encode(p, opts)
}

// addStageSeries draws one marked line per stage and labels them in the
// legend when there is more than one.
func addStageSeries(p *plot.Plot, stages []string, xs, ys [][]float64) error {
	for i, stage := range stages {
		pts := make(plotter.XYs, 0, len(xs[i]))
		for k := range xs[i] {
			if math.IsNaN(ys[i][k]) {
				continue
			}
			pts = append(pts, plotter.XY{X: xs[i][k], Y: ys[i][k]})
		}
		if len(pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("failed to create line for %s: %w", stage, err)
		}
		c := constants.StageColour(stage)
		line.Color = c
		line.Width = vg.Points(1.5)
		points.Color = c
		points.Radius = vg.Points(2.5)

		p.Add(line, points)
		if len(stages) > 1 {
			p.Legend.Add(capitalize(stage), line, points)
		}
	}
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)
	return nil
}

// PlotResolutionConvergence plots each stage's comparison metric against
// the mesh element count.
func PlotResolutionConvergence(res *pipeline.ResolutionResult, opts Options) ([]byte, error) {
	if res == nil || len(res.Series) == 0 {
		return nil, fmt.Errorf("no resolution results to plot")
	}

	p := plot.New()
	p.Title.Text = "Mesh convergence"
	p.X.Label.Text = "Number of elements"
	p.Y.Label.Text = fmt.Sprintf("%s (mV)", res.Metric.Label())
	p.Add(plotter.NewGrid())

	stages := make([]string, len(res.Series))
	xs := make([][]float64, len(res.Series))
	ys := make([][]float64, len(res.Series))
	for i, s := range res.Series {
		stages[i], xs[i], ys[i] = s.Stage, s.Elements, s.Comparison
	}
	if err := addStageSeries(p, stages, xs, ys); err != nil {
		return nil, err
	}
	p.X.Tick.Marker = sciTicks{}

	return encode(p, opts)
}

// PlotParameterComparison plots each stage's comparison metric against the
// swept parameter value.
func PlotParameterComparison(res *pipeline.ParameterResult, opts Options) ([]byte, error) {
	if res == nil || len(res.Series) == 0 {
		return nil, fmt.Errorf("no parameter results to plot")
	}

	p := plot.New()
	p.X.Label.Text = constants.ParamAxisLabel(res.Parameter)
	p.Y.Label.Text = res.Metric.Label()
	p.Add(plotter.NewGrid())

	stages := make([]string, len(res.Series))
	xs := make([][]float64, len(res.Series))
	ys := make([][]float64, len(res.Series))
	for i, s := range res.Series {
		stages[i], xs[i], ys[i] = s.Stage, s.Values, s.Comparison
	}
	if err := addStageSeries(p, stages, xs, ys); err != nil {
		return nil, err
	}

	return encode(p, opts)
}

// PlotSpikePropagation plots the number of spikes reaching the cervical
// end against the swept parameter value.
func PlotSpikePropagation(res *pipeline.ParameterResult, opts Options) ([]byte, error) {
	if res == nil || len(res.Series) == 0 {
		return nil, fmt.Errorf("no parameter results to plot")
	}

	p := plot.New()
	p.X.Label.Text = constants.ParamAxisLabel(res.Parameter)
	p.Y.Label.Text = "Number of propagated spikes"
	p.Add(plotter.NewGrid())

	stages := make([]string, len(res.Series))
	xs := make([][]float64, len(res.Series))
	ys := make([][]float64, len(res.Series))
	maxSpikes := 0
	for i, s := range res.Series {
		stages[i], xs[i] = s.Stage, s.Values
		ys[i] = make([]float64, len(s.Spikes))
		for k, n := range s.Spikes {
			ys[i][k] = float64(n)
			maxSpikes = max(maxSpikes, n)
		}
	}
	if err := addStageSeries(p, stages, xs, ys); err != nil {
		return nil, err
	}
	p.Y.Min = 0
	p.Y.Max = float64(maxSpikes) + 1
	p.Y.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
		return generateTicks(int(math.Ceil(min)), int(math.Floor(max)), tickStep(max-min))
	})

	return encode(p, opts)
}

// generateTicks returns integer ticks from lo to hi every step.
func generateTicks(lo, hi, step int) []plot.Tick {
	if step < 1 {
		step = 1
	}
	var ticks []plot.Tick
	for i := lo; i <= hi; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: strconv.Itoa(i)})
	}
	return ticks
}

// tickStep picks an integer step giving at most about ten ticks.
func tickStep(span float64) int {
	step := int(math.Ceil(span / 10))
	if step < 1 {
		return 1
	}
	return step
}

// sciTicks labels the default ticks in scientific notation.
type sciTicks struct{}

func (sciTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = strconv.FormatFloat(ticks[i].Value, 'e', 1, 64)
		}
	}
	return ticks
}
