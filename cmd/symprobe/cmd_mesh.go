package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/virtual-uterus/symprobe/internal/mesh"
	"github.com/virtual-uterus/symprobe/internal/parser"
	"github.com/virtual-uterus/symprobe/internal/report"
)

func newMeshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Inspect TetGen mesh spacing and quality",
	}
	cmd.AddCommand(newMeshDistanceCmd(), newMeshQualityCmd())
	return cmd
}

// meshSeries reads the --range flag. An empty range selects the mesh base
// alone.
func meshSeries(cmd *cobra.Command) ([]int, error) {
	tokens, _ := cmd.Flags().GetStringSlice("range")
	if len(tokens) == 0 {
		return nil, nil
	}
	rng, err := parser.GetRange(tokens)
	if err != nil {
		return nil, err
	}
	return rng.Numbers, nil
}

func newMeshDistanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance <mesh-path>",
		Short: "Summarise neighbour distances and edge lengths",
		Long: `Reads <mesh-path>.node and <mesh-path>.ele, or <mesh-path>_<n> for each n
of --range, and summarises element centroid distances and edge lengths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			sims, err := meshSeries(cmd)
			if err != nil {
				return err
			}

			infos, err := mesh.DistanceInformation(e.dataPath(args[0]), sims, e.logger)
			if err != nil {
				return err
			}

			name := "distance_" + filepath.Base(args[0])
			params := [][2]string{{"Mesh", e.dataPath(args[0])}}
			return e.finish("Mesh spacing", pdfName(cmd, name), params,
				[]report.Table{report.DistanceTable(infos)}, nil)
		},
	}
	cmd.Flags().StringSliceP("range", "r", nil, "Mesh numbers of a resolution series")
	cmd.Flags().Bool("pdf", false, "Also write a PDF report")
	return cmd
}

func newMeshQualityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality <mesh-path> <metric>",
		Short: "Compute per-element quality of a mesh or a resolution series",
		Long: `Computes aspect_ratio, jacobian, scaled_jacobian or mean_ratio for every
element. A single mesh is plotted as a histogram, a series as box plots.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			metric, err := mesh.ParseQualityMetric(args[1])
			if err != nil {
				return err
			}
			sims, err := meshSeries(cmd)
			if err != nil {
				return err
			}

			infos, err := mesh.QualityInformation(e.dataPath(args[0]), metric, sims, e.logger)
			if err != nil {
				return err
			}

			plotOpts := e.plotOptions()
			var data []byte
			if len(infos) == 1 {
				data, err = report.PlotSingleMeshQuality(infos[0], plotOpts)
			} else {
				data, err = report.PlotMultiMeshQuality(infos, plotOpts)
			}
			if err != nil {
				return err
			}

			key := fmt.Sprintf("%s_%s", metric, filepath.Base(args[0]))
			figs := []report.Figure{{
				Key:     key,
				Title:   metric.Title(),
				Caption: "Finite values only, degenerate elements excluded",
				Data:    data,
				Format:  plotOpts.Format,
			}}
			params := [][2]string{{"Mesh", e.dataPath(args[0])}, {"Metric", string(metric)}}
			return e.finish("Mesh quality", pdfName(cmd, key), params,
				[]report.Table{report.QualityTable(infos)}, figs)
		},
	}
	cmd.Flags().StringSliceP("range", "r", nil, "Mesh numbers of a resolution series")
	cmd.Flags().Bool("pdf", false, "Also write a PDF report")
	return cmd
}
