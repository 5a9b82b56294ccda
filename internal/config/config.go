// Package config provides configuration loading for symprobe.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config contains all symprobe configuration settings.
type Config struct {
	// Paths locates input data and output figures.
	Paths PathsConfig `json:"paths" yaml:"paths"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Plot controls figure rendering.
	Plot PlotConfig `json:"plot" yaml:"plot"`

	// Analysis holds defaults for spike detection and metrics.
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`

	// Sweep configures the simulation sweep driver.
	Sweep SweepConfig `json:"sweep" yaml:"sweep"`
}

// PathsConfig locates data and outputs.
type PathsConfig struct {
	// Base is the data root that relative directory arguments are joined to.
	// Defaults to ~/Documents/phd.
	Base string `json:"base" yaml:"base"`

	// Output is the directory figures and reports are written to.
	Output string `json:"output" yaml:"output"`
}

// LoggingConfig configures logging verbosity.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// PlotConfig controls figure size and encoding.
type PlotConfig struct {
	// Width and Height are in points.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// Format is the image encoding: "png", "svg" or "pdf".
	Format string `json:"format" yaml:"format"`
}

// AnalysisConfig holds metric defaults.
type AnalysisConfig struct {
	// SpikeHeight is the minimum peak height in mV for spike detection.
	SpikeHeight float64 `json:"spike_height" yaml:"spike_height"`

	// Tau is the Van Rossum kernel time constant in seconds.
	Tau float64 `json:"tau" yaml:"tau"`
}

// SweepConfig configures simulation sweeps.
type SweepConfig struct {
	// Simulator is the binary run once per sweep step.
	Simulator string `json:"simulator" yaml:"simulator"`

	// Resistance is the tissue resistance used to derive conductivities
	// from mesh spacing in resolution sweeps. Must be set for those sweeps.
	Resistance float64 `json:"resistance" yaml:"resistance"`

	// MeshSpacing maps a mesh name to its mean inter-element distance.
	MeshSpacing map[string]float64 `json:"mesh_spacing,omitempty" yaml:"mesh_spacing,omitempty"`

	// MeshDir holds TetGen meshes used to compute spacing when a mesh is
	// missing from MeshSpacing.
	MeshDir string `json:"mesh_dir,omitempty" yaml:"mesh_dir,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	base := constants.DefaultBase
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, constants.DefaultBase)
	}
	return &Config{
		Paths: PathsConfig{
			Base:   base,
			Output: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Plot: PlotConfig{
			Width:  480,
			Height: 360,
			Format: "png",
		},
		Analysis: AnalysisConfig{
			SpikeHeight: constants.DefaultSpikeHeight,
			Tau:         constants.DefaultTau,
		},
		Sweep: SweepConfig{
			Simulator: constants.DefaultSimulator,
		},
	}
}

// DefaultPath returns ~/.symprobe/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".symprobe", "config.yaml"), nil
}

// Load loads configuration from path, or the default location when path is
// empty, then applies environment variable overrides.
// Order: defaults -> config file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			fileConfig, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
			config = fileConfig
		} else if explicit {
			return nil, fmt.Errorf("loading config file: %w", statErr)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Paths.Base = expandHome(config.Paths.Base)
	config.Paths.Output = expandHome(config.Paths.Output)
	config.Sweep.MeshDir = expandHome(config.Sweep.MeshDir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	validFormats := map[string]bool{"png": true, "svg": true, "pdf": true}
	if !validFormats[c.Plot.Format] {
		return fmt.Errorf("invalid plot format: %s (valid: png, svg, pdf)", c.Plot.Format)
	}

	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}

	if c.Analysis.Tau < 0 {
		return fmt.Errorf("tau must be non-negative, got %g", c.Analysis.Tau)
	}

	if c.Sweep.Resistance < 0 {
		return fmt.Errorf("resistance must be non-negative, got %g", c.Sweep.Resistance)
	}

	for mesh, d := range c.Sweep.MeshSpacing {
		if d <= 0 {
			return fmt.Errorf("mesh spacing for %s must be positive, got %g", mesh, d)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SYMPROBE_BASE_DIR"); v != "" {
		config.Paths.Base = expandHome(v)
	}

	if v := os.Getenv("SYMPROBE_OUTPUT_DIR"); v != "" {
		config.Paths.Output = expandHome(v)
	}

	if v := os.Getenv("SYMPROBE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("SYMPROBE_SIMULATOR"); v != "" {
		config.Sweep.Simulator = v
	}

	if v := os.Getenv("SYMPROBE_RESISTANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Sweep.Resistance = f
		}
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
