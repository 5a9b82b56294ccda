package report

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/virtual-uterus/symprobe/internal/mesh"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const histogramBins = 50

var qualityFill = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}

// finite drops NaN and infinite values, which mark degenerate elements.
func finite(values []float64) plotter.Values {
	out := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// PlotSingleMeshQuality plots the distribution of one mesh's quality
// values.
func PlotSingleMeshQuality(info mesh.QualityInfo, opts Options) ([]byte, error) {
	values := finite(info.Values)
	if len(values) == 0 {
		return nil, fmt.Errorf("no finite %s values for mesh %s", info.Metric, info.Name)
	}

	p := plot.New()
	p.Title.Text = info.Name
	p.X.Label.Text = info.Metric.Title()
	p.Y.Label.Text = "Number of elements"

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	h.FillColor = qualityFill
	p.Add(h)

	return encode(p, opts)
}

// PlotMultiMeshQuality draws one box plot per mesh of a resolution series,
// labelled with its element count.
func PlotMultiMeshQuality(infos []mesh.QualityInfo, opts Options) ([]byte, error) {
	if len(infos) == 0 {
		return nil, fmt.Errorf("no mesh quality data to plot")
	}

	p := plot.New()
	p.X.Label.Text = "Number of elements"
	p.Y.Label.Text = infos[0].Metric.Title()

	names := make([]string, len(infos))
	for i, info := range infos {
		values := finite(info.Values)
		if len(values) == 0 {
			return nil, fmt.Errorf("no finite %s values for mesh %s", info.Metric, info.Name)
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), values)
		if err != nil {
			return nil, fmt.Errorf("failed to create box plot for %s: %w", info.Name, err)
		}
		box.FillColor = qualityFill
		p.Add(box)
		names[i] = strconv.Itoa(info.Elements)
	}
	p.NominalX(names...)

	return encode(p, opts)
}
