package pipeline

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/logging"
	"github.com/virtual-uterus/symprobe/internal/parser"
)

// Resolution compares each simulation of a mesh resolution sweep with the
// next finer one. The last simulation is compared with itself.
func Resolution(opts Options) (*ResolutionResult, error) {
	logger := logging.OrDiscard(opts.Logger)

	sims, stages, err := Setup(opts.Range, opts.Estrus)
	if err != nil {
		return nil, err
	}

	result := &ResolutionResult{Metric: opts.Metric, Sims: sims}
	for _, stage := range stages {
		dir := opts.stageDir(stage)
		logger.Info("resolution sweep", "stage", stage, "dir", dir, "sims", len(sims))

		data := make([][]float64, len(sims))
		times := make([][]float64, len(sims))
		elements := make([]float64, len(sims))
		for i, sim := range sims {
			tr, err := LoadSimulation(dir, opts.SimName, sim, opts.Delimiter, logger)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", stage, err)
			}
			if data[i], err = channel(tr, opts.Channel); err != nil {
				return nil, err
			}
			times[i] = tr.T

			if n, ok := constants.Resolutions[tr.Mesh]; ok {
				elements[i] = float64(n)
			} else {
				logger.Warn("unknown mesh resolution, using simulation number", "mesh", tr.Mesh, "sim", sim)
				elements[i] = float64(sim)
			}
		}

		comp := make([]float64, len(sims))
		for i := range sims {
			next := i + 1
			if next == len(sims) {
				next = i
			}
			comp[i], err = opts.compare(logger, data[i], data[next], times[i], "stage", stage, "sim", sims[i], "ref", sims[next])
			if err != nil {
				return nil, fmt.Errorf("%s: comparing simulations %d and %d: %w", stage, sims[i], sims[next], err)
			}
		}

		result.Series = append(result.Series, ResolutionSeries{
			Stage:      stage,
			Elements:   elements,
			Comparison: comp,
		})
	}
	return result, nil
}

// Cell loads every selected simulation from opts.Dir for plotting. With
// every stage selected, simulations are assigned to stages in order and
// their counts must agree.
func Cell(opts Options) (*CellResult, error) {
	logger := logging.OrDiscard(opts.Logger)

	sims, stages, err := Setup(opts.Range, opts.Estrus)
	if err != nil {
		return nil, err
	}
	if len(stages) > 1 && len(stages) != len(sims) {
		return nil, fmt.Errorf("%w: %d simulations for %d stages", ErrRangeMismatch, len(sims), len(stages))
	}

	result := &CellResult{}
	for i, sim := range sims {
		stage := stages[0]
		if len(stages) > 1 {
			stage = stages[i]
		}

		tr, err := LoadSimulation(opts.Dir, opts.SimName, sim, opts.Delimiter, logger)
		if err != nil {
			return nil, err
		}

		velocity := math.NaN()
		if _, ok := constants.HornLengths[tr.Mesh]; ok {
			velocity, err = analysis.EstimateVelocity(tr.V, tr.T, tr.Mesh, opts.Height)
			if err != nil {
				logger.Warn("could not estimate velocity", "sim", sim, "error", err)
				velocity = math.NaN()
			} else {
				logger.Info("estimated propagation velocity", "sim", sim, "stage", stage, "mm_per_s", velocity)
			}
		}

		result.Traces = append(result.Traces, CellTrace{
			Sim:      sim,
			Stage:    stage,
			Trace:    tr,
			Velocity: velocity,
		})
	}
	return result, nil
}

// Parameter compares each simulation of a parameter sweep with the first
// one and counts the spikes reaching the cervical end.
func Parameter(opts Options) (*ParameterResult, error) {
	logger := logging.OrDiscard(opts.Logger)

	if opts.Parameter == "" {
		return nil, fmt.Errorf("%w: no parameter given", parser.ErrNotFound)
	}
	sims, stages, err := Setup(opts.Range, opts.Estrus)
	if err != nil {
		return nil, err
	}

	result := &ParameterResult{Metric: opts.Metric, Parameter: opts.Parameter, Sims: sims}
	for _, stage := range stages {
		dir := opts.stageDir(stage)
		logger.Info("parameter sweep", "stage", stage, "parameter", opts.Parameter, "dir", dir)

		data := make([][]float64, len(sims))
		times := make([][]float64, len(sims))
		values := make([]float64, len(sims))
		spikes := make([]int, len(sims))
		for i, sim := range sims {
			tr, err := LoadSimulation(dir, opts.SimName, sim, opts.Delimiter, logger)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", stage, err)
			}
			if data[i], err = channel(tr, opts.Channel); err != nil {
				return nil, err
			}
			times[i] = tr.T

			if values[i], err = parser.GetParamValue(tr.LogPath, opts.Parameter); err != nil {
				return nil, err
			}

			cvx, err := channel(tr, constants.Cervix)
			if err != nil {
				return nil, err
			}
			spikeTimes, err := analysis.ExtractSpikeTimes(cvx, tr.T, opts.Height)
			if err != nil {
				return nil, err
			}
			spikes[i] = len(spikeTimes)
		}

		comp := make([]float64, len(sims))
		for i := 1; i < len(sims); i++ {
			comp[i], err = opts.compare(logger, data[i], data[0], times[i], "stage", stage, "sim", sims[i], "ref", sims[0])
			if err != nil {
				return nil, fmt.Errorf("%s: comparing simulations %d and %d: %w", stage, sims[i], sims[0], err)
			}
		}

		result.Series = append(result.Series, ParameterSeries{
			Stage:      stage,
			Values:     values,
			Comparison: comp,
			Spikes:     spikes,
		})
	}
	return result, nil
}

// Comparison compares, channel by channel, the idealised and realistic
// mesh simulations of each stage. Stage i uses simulation number sims[i]
// from both datasets.
func Comparison(opts Options) (*ComparisonResult, error) {
	logger := logging.OrDiscard(opts.Logger)

	sims, stages, err := Setup(opts.Range, opts.Estrus)
	if err != nil {
		return nil, err
	}
	if len(sims) != len(stages) {
		return nil, fmt.Errorf("%w: %d simulations for %d stages", ErrRangeMismatch, len(sims), len(stages))
	}

	idealisedDir := filepath.Join(opts.Dir, opts.IdealisedDir, opts.SubDir)
	realisticDir := filepath.Join(opts.Dir, opts.RealisticDir, opts.SubDir)

	result := &ComparisonResult{Metric: opts.Metric}
	for i, stage := range stages {
		sim := sims[i]

		idealised, err := LoadSimulation(idealisedDir, opts.SimName, sim, opts.Delimiter, logger)
		if err != nil {
			return nil, fmt.Errorf("idealised %s: %w", stage, err)
		}
		realistic, err := LoadSimulation(realisticDir, opts.SimName, sim, opts.Delimiter, logger)
		if err != nil {
			return nil, fmt.Errorf("realistic %s: %w", stage, err)
		}
		if idealised.NumCells() != realistic.NumCells() {
			return nil, fmt.Errorf("%s: %w: %d idealised and %d realistic channels",
				stage, analysis.ErrShapeMismatch, idealised.NumCells(), realistic.NumCells())
		}

		channels := make([]float64, idealised.NumCells())
		for j := range channels {
			channels[j], err = opts.compare(logger, idealised.Channel(j), realistic.Channel(j), idealised.T,
				"stage", stage, "channel", j)
			if err != nil {
				return nil, fmt.Errorf("%s: channel %d: %w", stage, j, err)
			}
		}

		mean, std := analysis.MeanStd(channels)
		logger.Info("mesh comparison", "stage", stage, "metric", opts.Metric, "mean", mean, "std", std)

		result.Stages = append(result.Stages, StageComparison{
			Stage:     stage,
			Sim:       sim,
			Channels:  channels,
			Mean:      mean,
			Std:       std,
			Idealised: idealised,
			Realistic: realistic,
		})
	}
	return result, nil
}
