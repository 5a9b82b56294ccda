package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/logging"
	"github.com/virtual-uterus/symprobe/internal/parser"
)

// Setup resolves the range tokens and estrus filter into the simulation
// numbers and stages to iterate. A single simulation cannot be spread over
// every stage.
func Setup(rangeTokens []string, estrus string) ([]int, []string, error) {
	rng, err := parser.GetRange(rangeTokens)
	if err != nil {
		return nil, nil, err
	}

	if estrus == constants.EstrusAll {
		if rng.Single {
			return nil, nil, fmt.Errorf("%w: estrus cannot be all with a single simulation", ErrRangeMismatch)
		}
		return rng.Numbers, append([]string(nil), constants.Estrus...), nil
	}

	if !constants.IsEstrusStage(estrus) {
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownStage, estrus)
	}
	return rng.Numbers, []string{estrus}, nil
}

// LoadSimulation loads simulation n from dir and reorders its channels to
// ovary, centre, cervix. Exports of meshes without known extraction points
// are kept in export order.
func LoadSimulation(dir, simName string, n int, delimiter rune, logger *slog.Logger) (*parser.Trace, error) {
	logger = logging.OrDiscard(logger)

	dataPath, logPath := parser.DataPaths(dir, simName, n)
	tr, err := parser.LoadData(dataPath, logPath, delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation %d: %w", n, err)
	}
	logger.Debug("loaded simulation", "path", dataPath, "mesh", tr.Mesh,
		"timesteps", tr.NumTimesteps(), "cells", tr.NumCells())

	ordered, ok := constants.Points[tr.Mesh]
	if !ok {
		logger.Warn("no extraction points for mesh, keeping export order", "mesh", tr.Mesh)
		return tr, nil
	}

	v, err := analysis.Reorder(tr.V, tr.CellIDs, ordered)
	if err != nil {
		return nil, fmt.Errorf("failed to reorder simulation %d: %w", n, err)
	}
	tr.V = v
	tr.CellIDs = append([]int(nil), ordered...)
	return tr, nil
}

func channel(tr *parser.Trace, j int) ([]float64, error) {
	if j < 0 || j >= tr.NumCells() {
		return nil, fmt.Errorf("%w: channel %d of %d in %s", ErrInvalidChannel, j, tr.NumCells(), tr.LogPath)
	}
	return tr.Channel(j), nil
}
