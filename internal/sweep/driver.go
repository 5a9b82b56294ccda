package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/logging"
	"github.com/virtual-uterus/symprobe/internal/mesh"
)

// SpacingFunc returns the mean inter-element distance of a mesh, in the
// length unit the simulator's conductivities expect.
type SpacingFunc func(meshName string) (float64, error)

// Driver runs simulator sweeps. Every step rewrites the configuration,
// runs the simulator and waits for it; the first failure stops the sweep.
type Driver struct {
	Runner     Runner
	Simulator  string
	Resistance float64
	Spacing    SpacingFunc
	Logger     *slog.Logger
}

// SpacingLookup resolves mesh spacing from table, falling back to
// computing it from the TetGen mesh of that name in meshDir.
func SpacingLookup(table map[string]float64, meshDir string) SpacingFunc {
	return func(name string) (float64, error) {
		if d, ok := table[name]; ok {
			return d, nil
		}
		if meshDir == "" {
			return 0, fmt.Errorf("%w: no spacing for mesh %s", ErrInvalidSweep, name)
		}
		return mesh.MeanSpacing(filepath.Join(meshDir, name))
	}
}

func (d *Driver) logger() *slog.Logger {
	return logging.OrDiscard(d.Logger)
}

func (d *Driver) simulate(ctx context.Context, dim int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.Runner.Run(ctx, d.Simulator, strconv.Itoa(dim))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ResolutionSweep runs the meshes <meshName>_<start> to <meshName>_<end>,
// setting the isotropic conductivity to 1 / (R d^2) for mesh spacing d.
func (d *Driver) ResolutionSweep(ctx context.Context, dim int, meshName string, start, end int) error {
	if start > end {
		return fmt.Errorf("%w: the start value is greater than the end value", ErrInvalidSweep)
	}
	if d.Resistance <= 0 {
		return fmt.Errorf("%w: resistance must be set for resolution sweeps", ErrInvalidSweep)
	}
	if d.Spacing == nil {
		return fmt.Errorf("%w: no mesh spacing source", ErrInvalidSweep)
	}

	dimConfig, err := DimConfig(dim)
	if err != nil {
		return err
	}
	cellConfig, err := CellConfig(dimConfig)
	if err != nil {
		return err
	}

	param := fmt.Sprintf("conductivities_%dd", dim)
	for j := start; j <= end; j++ {
		current := fmt.Sprintf("%s_%d", meshName, j)
		spacing, err := d.Spacing(current)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", current, err)
		}
		conductivity := 1 / (d.Resistance * spacing * spacing)

		if err := ModifyConfig(dimConfig, "mesh_name", current); err != nil {
			return err
		}
		if err := ModifyConfig(cellConfig, param, formatFloat(conductivity)); err != nil {
			return err
		}

		d.logger().Info("running simulation", "mesh", current, "conductivity", conductivity)
		if err := d.simulate(ctx, dim); err != nil {
			return fmt.Errorf("mesh %s: %w", current, err)
		}
	}
	return nil
}

// ParameterValues returns start, start+step, ... up to end inclusive.
func ParameterValues(start, end, step float64) ([]float64, error) {
	if start > end {
		return nil, fmt.Errorf("%w: the start value is greater than the end value", ErrInvalidSweep)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidSweep, step)
	}

	eps := step * 1e-9
	var values []float64
	for k := 0; ; k++ {
		v := start + float64(k)*step
		if v > end+eps {
			break
		}
		values = append(values, v)
	}
	return values, nil
}

// ParameterSweep runs the simulator once per value of param from start to
// end inclusive.
func (d *Driver) ParameterSweep(ctx context.Context, dim int, param string, start, end, step float64) error {
	values, err := ParameterValues(start, end, step)
	if err != nil {
		return err
	}

	dimConfig, err := DimConfig(dim)
	if err != nil {
		return err
	}
	cellConfig, err := CellConfig(dimConfig)
	if err != nil {
		return err
	}

	for _, v := range values {
		if err := ModifyConfig(cellConfig, param, formatFloat(v)); err != nil {
			return err
		}

		d.logger().Info("running simulation", "parameter", param, "value", v)
		if err := d.simulate(ctx, dim); err != nil {
			return fmt.Errorf("%s = %g: %w", param, v, err)
		}
	}
	return nil
}

// EstrusSweep runs the simulator once per estrus stage.
func (d *Driver) EstrusSweep(ctx context.Context, dim int) error {
	dimConfig, err := DimConfig(dim)
	if err != nil {
		return err
	}

	for _, stage := range constants.Estrus {
		if err := ModifyConfig(dimConfig, "estrus", stage); err != nil {
			return err
		}

		d.logger().Info("running simulation", "estrus", stage)
		if err := d.simulate(ctx, dim); err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
	}
	return nil
}
