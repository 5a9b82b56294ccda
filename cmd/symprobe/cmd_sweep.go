package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run simulation sweeps",
		Long: "Rewrites the simulation configuration found under $" + constants.ConfigEnvVar +
			"\nand runs the simulator once per sweep step. The first failure stops the\nsweep.",
	}
	cmd.AddCommand(newSweepResolutionCmd(), newSweepParameterCmd(), newSweepEstrusCmd())
	return cmd
}

// signalContext returns a context cancelled on interrupt, so the running
// simulator is killed and no further step starts.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func newDriver(cmd *cobra.Command, e *env) *sweep.Driver {
	return &sweep.Driver{
		Runner:     sweep.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()},
		Simulator:  e.cfg.Sweep.Simulator,
		Resistance: e.cfg.Sweep.Resistance,
		Spacing:    sweep.SpacingLookup(e.cfg.Sweep.MeshSpacing, e.cfg.Sweep.MeshDir),
		Logger:     e.logger,
	}
}

func parseDim(s string) (int, error) {
	dim, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid dimension %q: %w", s, err)
	}
	return dim, nil
}

// runSweep runs fn with a driver and a signal-aware context.
func runSweep(cmd *cobra.Command, fn func(ctx context.Context, d *sweep.Driver) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	if err := fn(ctx, newDriver(cmd, e)); err != nil {
		return err
	}
	e.logger.Info("sweep complete")
	return nil
}

func newSweepResolutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolution <dim> <mesh-name> <start> <end>",
		Short: "Run the meshes <mesh-name>_<start> to <mesh-name>_<end>",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := parseDim(args[0])
			if err != nil {
				return err
			}
			start, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[2], err)
			}
			end, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", args[3], err)
			}
			return runSweep(cmd, func(ctx context.Context, d *sweep.Driver) error {
				return d.ResolutionSweep(ctx, dim, args[1], start, end)
			})
		},
	}
}

func newSweepParameterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parameter <dim> <parameter> <start> <end> <step>",
		Short: "Run the simulator for each value of a cell parameter",
		Long: `Runs the simulator for start, start+step, ... up to end. Negative
values are read as arguments, so flags go before <dim>.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := parseDim(args[0])
			if err != nil {
				return err
			}
			vals := make([]float64, 3)
			for i, s := range args[2:] {
				if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
					return fmt.Errorf("invalid value %q: %w", s, err)
				}
			}
			return runSweep(cmd, func(ctx context.Context, d *sweep.Driver) error {
				return d.ParameterSweep(ctx, dim, args[1], vals[0], vals[1], vals[2])
			})
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newSweepEstrusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estrus <dim>",
		Short: "Run the simulator once per estrus stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := parseDim(args[0])
			if err != nil {
				return err
			}
			return runSweep(cmd, func(ctx context.Context, d *sweep.Driver) error {
				return d.EstrusSweep(ctx, dim)
			})
		},
	}
}
