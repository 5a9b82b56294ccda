// Package pipeline aggregates simulation exports across sweep axes
// (mesh resolution, parameter value, estrus stage) and reduces them with
// the analysis metrics.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/logging"
	"github.com/virtual-uterus/symprobe/internal/parser"
)

var (
	// ErrRangeMismatch is returned when the simulation selection does not
	// fit the requested estrus stages.
	ErrRangeMismatch = errors.New("simulation range does not match estrus stages")

	// ErrUnknownStage is returned for an estrus filter that is neither a
	// stage nor "all".
	ErrUnknownStage = errors.New("unknown estrus stage")

	// ErrInvalidChannel is returned when the selected channel is not
	// present in an export.
	ErrInvalidChannel = errors.New("channel out of range")
)

// Options configures a pipeline run. Dir is the absolute data directory;
// the other directory fields are names relative to it.
type Options struct {
	Dir       string
	EstrusDir string // suffix of the per-stage directories, <stage>_<EstrusDir>
	SubDir    string // comparison only
	SimName   string
	Estrus    string // a stage name or constants.EstrusAll
	Range     []string
	Delimiter rune

	Metric    analysis.Metric
	Channel   int    // column compared in resolution and parameter sweeps
	Parameter string // parameter sweeps only

	RealisticDir string
	IdealisedDir string

	Tau    float64
	Height float64

	Logger *slog.Logger
}

// DefaultOptions returns Options with the default simulation prefix, all
// stages, a comma delimiter and the ovarian channel.
func DefaultOptions() Options {
	return Options{
		SimName:   constants.DefaultSimName,
		Estrus:    constants.EstrusAll,
		Delimiter: ',',
		Metric:    analysis.MetricRMSE,
		Channel:   constants.Ovary,
		Tau:       constants.DefaultTau,
		Height:    constants.DefaultSpikeHeight,
	}
}

func (o Options) stageDir(stage string) string {
	return filepath.Join(o.Dir, stage+"_"+o.EstrusDir)
}

func (o Options) metricOptions(t []float64) analysis.Options {
	return analysis.Options{Tau: o.Tau, Time: t, Height: o.Height}
}

// compare evaluates the configured metric on two traces sampled at t and
// logs the result at trace level with attrs.
func (o Options) compare(logger *slog.Logger, yTrue, yPred, t []float64, attrs ...any) (float64, error) {
	v, err := analysis.ComputeComparison(yTrue, yPred, o.Metric, o.metricOptions(t))
	if err != nil {
		return 0, err
	}
	attrs = append(attrs, "metric", o.Metric, "value", v)
	logger.Log(context.Background(), logging.LevelTrace, "metric evaluated", attrs...)
	return v, nil
}

// ResolutionSeries is the convergence curve of one estrus stage.
type ResolutionSeries struct {
	Stage string
	// Elements holds the mesh element count of each simulation, or its
	// number when the mesh is not a known scaffold.
	Elements   []float64
	Comparison []float64 // Comparison[i] compares sim i with sim i+1
}

// ResolutionResult is the output of Resolution.
type ResolutionResult struct {
	Metric analysis.Metric
	Sims   []int
	Series []ResolutionSeries
}

// CellTrace is one loaded simulation of a cell sweep.
type CellTrace struct {
	Sim      int
	Stage    string
	Trace    *parser.Trace
	Velocity float64 // mm/s, NaN when it could not be estimated
}

// CellResult is the output of Cell.
type CellResult struct {
	Traces []CellTrace
}

// ParameterSeries holds the parameter sweep of one estrus stage.
type ParameterSeries struct {
	Stage      string
	Values     []float64 // parameter value read from each log
	Comparison []float64 // Comparison[i] compares sim i with sim 0
	Spikes     []int     // spikes at the cervical end of each sim
}

// ParameterResult is the output of Parameter.
type ParameterResult struct {
	Metric    analysis.Metric
	Parameter string
	Sims      []int
	Series    []ParameterSeries
}

// StageComparison compares the idealised and realistic meshes of a stage.
type StageComparison struct {
	Stage     string
	Sim       int
	Channels  []float64 // metric per channel, canonical order
	Mean      float64
	Std       float64
	Idealised *parser.Trace
	Realistic *parser.Trace
}

// ComparisonResult is the output of Comparison.
type ComparisonResult struct {
	Metric analysis.Metric
	Stages []StageComparison
}
