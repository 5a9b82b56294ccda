package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtual-uterus/symprobe/internal/analysis"
	"github.com/virtual-uterus/symprobe/internal/constants"
	"github.com/virtual-uterus/symprobe/internal/parser"
	"github.com/virtual-uterus/symprobe/internal/pipeline"
	"github.com/virtual-uterus/symprobe/internal/report"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Plot and compare extracted simulation data",
	}
	cmd.AddCommand(
		newResolutionCmd("resolution"),
		newCellCmd(),
		newParameterCmd(),
		newComparisonCmd(),
	)
	return cmd
}

func addSharedFlags(cmd *cobra.Command) {
	cmd.Flags().String("estrus", constants.EstrusAll, "Estrus stage: proestrus, estrus, metestrus, diestrus or all")
	cmd.Flags().String("sim-name", constants.DefaultSimName, "Simulation file prefix")
	cmd.Flags().StringSliceP("range", "r", nil, "Simulation numbers: n, a-b or a list")
	cmd.Flags().String("delimiter", ",", "Delimiter of the CSV exports")
	cmd.Flags().Bool("pdf", false, "Also bundle tables and figures into a PDF report")
}

// sharedOptions builds pipeline options from the shared flags, with dir
// resolved against the base directory.
func sharedOptions(cmd *cobra.Command, e *env, dir string) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.Dir = e.dataPath(dir)
	opts.Estrus, _ = cmd.Flags().GetString("estrus")
	opts.SimName, _ = cmd.Flags().GetString("sim-name")
	opts.Range, _ = cmd.Flags().GetStringSlice("range")
	opts.Tau = e.cfg.Analysis.Tau
	opts.Height = e.cfg.Analysis.SpikeHeight
	opts.Logger = e.logger

	delim, _ := cmd.Flags().GetString("delimiter")
	r, err := parseDelimiter(delim)
	if err != nil {
		return opts, err
	}
	opts.Delimiter = r
	return opts, nil
}

// pdfName returns name when --pdf is set, empty otherwise.
func pdfName(cmd *cobra.Command, name string) string {
	if on, _ := cmd.Flags().GetBool("pdf"); on {
		return name
	}
	return ""
}

func runParams(opts pipeline.Options, extra ...[2]string) [][2]string {
	params := [][2]string{
		{"Directory", opts.Dir},
		{"Estrus", opts.Estrus},
		{"Simulations", strings.Join(opts.Range, " ")},
	}
	return append(params, extra...)
}

func channelName(j int) string {
	if j >= 0 && j < len(constants.ChannelNames) {
		return constants.ChannelNames[j]
	}
	return strconv.Itoa(j)
}

func newResolutionCmd(use string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <dir-path> <estrus-dir> <metric> [sim-numbers...]",
		Short: "Plot the comparison metric across mesh resolutions",
		Long: `Compares each simulation of a mesh resolution sweep with the next finer
mesh, for every selected estrus stage. Simulation numbers are read from
--range or from the trailing arguments.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := sharedOptions(cmd, e, args[0])
			if err != nil {
				return err
			}
			opts.EstrusDir = args[1]
			if opts.Metric, err = analysis.ParseMetric(args[2]); err != nil {
				return err
			}
			if len(args) > 3 {
				opts.Range = args[3:]
			}
			opts.Channel, _ = cmd.Flags().GetInt("channel")

			res, err := pipeline.Resolution(opts)
			if err != nil {
				return err
			}

			plotOpts := e.plotOptions()
			data, err := report.PlotResolutionConvergence(res, plotOpts)
			if err != nil {
				return err
			}
			key := "resolution_" + string(res.Metric)
			figs := []report.Figure{{
				Key:     key,
				Title:   "Mesh convergence",
				Caption: fmt.Sprintf("%s between consecutive mesh resolutions", res.Metric.Label()),
				Data:    data,
				Format:  plotOpts.Format,
			}}
			params := runParams(opts, [2]string{"Metric", string(res.Metric)}, [2]string{"Channel", channelName(opts.Channel)})
			return e.finish("Mesh resolution convergence", pdfName(cmd, key), params,
				[]report.Table{report.ResolutionTable(res)}, figs)
		},
	}
	if use == "resolution" {
		cmd.Aliases = []string{"convergence"}
	}
	addSharedFlags(cmd)
	cmd.Flags().Int("channel", constants.Ovary, "Channel compared across resolutions")
	return cmd
}

func newCellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell <dir-path>",
		Short: "Plot the extracted traces of each cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := sharedOptions(cmd, e, args[0])
			if err != nil {
				return err
			}

			res, err := pipeline.Cell(opts)
			if err != nil {
				return err
			}

			plotOpts := e.plotOptions()
			var figs []report.Figure
			for _, ct := range res.Traces {
				for j := 0; j < ct.Trace.NumCells(); j++ {
					data, err := report.PlotCellData(ct.Trace, j, ct.Stage, plotOpts)
					if err != nil {
						return err
					}
					figs = append(figs, report.Figure{
						Key:    fmt.Sprintf("cell_%s_%s", parser.SimFileName(ct.Stage, ct.Sim), channelName(j)),
						Title:  fmt.Sprintf("Simulation %d, %s, %s", ct.Sim, ct.Stage, channelName(j)),
						Data:   data,
						Format: plotOpts.Format,
					})
				}
			}
			return e.finish("Cell traces", pdfName(cmd, "cell"), runParams(opts),
				[]report.Table{report.CellTable(res)}, figs)
		},
	}
	addSharedFlags(cmd)
	return cmd
}

func newParameterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parameter <dir-path> <parameter> <metric> <estrus-dir>",
		Short: "Plot the comparison metric across parameter values",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := sharedOptions(cmd, e, args[0])
			if err != nil {
				return err
			}
			opts.Parameter = args[1]
			if opts.Metric, err = analysis.ParseMetric(args[2]); err != nil {
				return err
			}
			opts.EstrusDir = args[3]
			opts.Channel, _ = cmd.Flags().GetInt("channel")

			res, err := pipeline.Parameter(opts)
			if err != nil {
				return err
			}

			plotOpts := e.plotOptions()
			comparison, err := report.PlotParameterComparison(res, plotOpts)
			if err != nil {
				return err
			}
			spikes, err := report.PlotSpikePropagation(res, plotOpts)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("parameter_%s_%s", res.Parameter, res.Metric)
			figs := []report.Figure{
				{
					Key:     key,
					Title:   "Parameter comparison",
					Caption: fmt.Sprintf("%s against the first simulation", res.Metric.Label()),
					Data:    comparison,
					Format:  plotOpts.Format,
				},
				{
					Key:     "spikes_" + res.Parameter,
					Title:   "Spike propagation",
					Caption: "Spikes reaching the cervical end",
					Data:    spikes,
					Format:  plotOpts.Format,
				},
			}
			params := runParams(opts, [2]string{"Parameter", res.Parameter}, [2]string{"Metric", string(res.Metric)})
			return e.finish("Parameter sweep", pdfName(cmd, key), params,
				[]report.Table{report.ParameterTable(res)}, figs)
		},
	}
	addSharedFlags(cmd)
	cmd.Flags().Int("channel", constants.Ovary, "Channel compared across parameter values")
	return cmd
}

func newComparisonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comparison <dir-path> <metric>",
		Short: "Compare idealised and realistic mesh simulations",
		Long: `Compares, channel by channel, simulations run on the idealised scaffold
and on the realistic meshes. Stage i uses the i-th simulation number.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			opts, err := sharedOptions(cmd, e, args[0])
			if err != nil {
				return err
			}
			if opts.Metric, err = analysis.ParseMetric(args[1]); err != nil {
				return err
			}
			opts.RealisticDir, _ = cmd.Flags().GetString("realistic-dir")
			opts.IdealisedDir, _ = cmd.Flags().GetString("idealised-dir")
			opts.SubDir, _ = cmd.Flags().GetString("sub-dir")

			res, err := pipeline.Comparison(opts)
			if err != nil {
				return err
			}

			plotOpts := e.plotOptions()
			heatmap, err := report.PlotComparisonHeatmap(res, plotOpts)
			if err != nil {
				return err
			}
			key := "comparison_" + string(res.Metric)
			figs := []report.Figure{{
				Key:     key,
				Title:   "Idealised vs realistic",
				Caption: fmt.Sprintf("%s per stage and channel", res.Metric.Label()),
				Data:    heatmap,
				Format:  plotOpts.Format,
			}}
			for _, sc := range res.Stages {
				for j := range sc.Channels {
					data, err := report.PlotCellComparison(sc.Idealised, sc.Realistic, j, sc.Stage, plotOpts)
					if err != nil {
						return err
					}
					figs = append(figs, report.Figure{
						Key:    fmt.Sprintf("comparison_%s_%s", sc.Stage, channelName(j)),
						Title:  fmt.Sprintf("%s, %s", sc.Stage, channelName(j)),
						Data:   data,
						Format: plotOpts.Format,
					})
				}
			}
			params := runParams(opts,
				[2]string{"Metric", string(res.Metric)},
				[2]string{"Idealised", opts.IdealisedDir},
				[2]string{"Realistic", opts.RealisticDir},
			)
			return e.finish("Mesh comparison", pdfName(cmd, key), params,
				[]report.Table{report.ComparisonTable(res)}, figs)
		},
	}
	addSharedFlags(cmd)
	cmd.Flags().String("realistic-dir", "realistic", "Directory of the realistic mesh simulations")
	cmd.Flags().String("idealised-dir", "idealised", "Directory of the idealised mesh simulations")
	cmd.Flags().String("sub-dir", "", "Sub-directory of both simulation directories")
	return cmd
}
