package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/virtual-uterus/symprobe/internal/config"
	"github.com/virtual-uterus/symprobe/internal/logging"
	"github.com/virtual-uterus/symprobe/internal/report"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "symprobe",
		Short: "Post-processing of uterine electrophysiology simulations",
		Long: `symprobe loads exported simulation traces, compares them across
mesh resolutions, parameter values and geometries, inspects mesh quality,
and drives simulation sweeps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.symprobe/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")
	rootCmd.PersistentFlags().String("base", "", "Data root that relative paths are joined to")
	rootCmd.PersistentFlags().String("out", "", "Directory figures and reports are written to")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(),
		newResolutionCmd("convergence"),
		newMeshCmd(),
		newSweepCmd(),
	)
	return rootCmd
}

// env is the resolved configuration of one command invocation.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	jsonOut bool
	stdout  io.Writer
}

// loadEnv loads the configuration, applies the persistent flag overrides
// and builds the logger.
func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("base"); v != "" {
		cfg.Paths.Base = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Paths.Output = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	return &env{
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		jsonOut: jsonOut,
		stdout:  cmd.OutOrStdout(),
	}, nil
}

// dataPath joins p to the base directory unless it is absolute.
func (e *env) dataPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.cfg.Paths.Base, p)
}

func (e *env) plotOptions() report.Options {
	return report.Options{
		Width:  e.cfg.Plot.Width,
		Height: e.cfg.Plot.Height,
		Format: e.cfg.Plot.Format,
	}
}

// saveFigures writes every figure to the output directory and returns the
// written paths.
func (e *env) saveFigures(figs []report.Figure) ([]string, error) {
	paths := make([]string, 0, len(figs))
	for _, f := range figs {
		p, err := report.WriteFigure(e.cfg.Paths.Output, f.Key, f.Format, f.Data)
		if err != nil {
			return nil, err
		}
		e.logger.Info("figure written", "path", p)
		paths = append(paths, p)
	}
	return paths, nil
}

// output is the result of an analysis command.
type output struct {
	Tables  []report.Table `json:"tables"`
	Figures []string       `json:"figures"`
	PDF     string         `json:"pdf,omitempty"`
}

// finish saves the figures, optionally bundles everything into a PDF, and
// prints the tables as text or JSON.
func (e *env) finish(title, pdfName string, params [][2]string, tables []report.Table, figs []report.Figure) error {
	paths, err := e.saveFigures(figs)
	if err != nil {
		return err
	}
	out := output{Tables: tables, Figures: paths}

	if pdfName != "" {
		pdfFigs := figs
		if e.cfg.Plot.Format != "png" {
			e.logger.Warn("PDF report only embeds png figures, omitting them", "format", e.cfg.Plot.Format)
			pdfFigs = nil
		}
		out.PDF = filepath.Join(e.cfg.Paths.Output, pdfName+".pdf")
		r := report.Report{Title: title, Parameters: params, Tables: tables, Figures: pdfFigs, Logger: e.logger}
		if err := report.BuildPDFReport(out.PDF, r); err != nil {
			return err
		}
		e.logger.Info("report written", "path", out.PDF)
	}

	if e.jsonOut {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, t := range tables {
		printTable(e.stdout, t)
	}
	for _, p := range paths {
		fmt.Fprintf(e.stdout, "Wrote %s\n", p)
	}
	if out.PDF != "" {
		fmt.Fprintf(e.stdout, "Wrote %s\n", out.PDF)
	}
	return nil
}

func printTable(w io.Writer, t report.Table) {
	if t.Title != "" {
		fmt.Fprintf(w, "%s\n", t.Title)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// parseDelimiter accepts a single character, or "tab" and "\t".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
