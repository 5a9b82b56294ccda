package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if config.Plot.Format != "png" {
		t.Errorf("expected Plot.Format 'png', got '%s'", config.Plot.Format)
	}
	if config.Analysis.SpikeHeight != -50 {
		t.Errorf("expected SpikeHeight -50, got %g", config.Analysis.SpikeHeight)
	}
	if config.Analysis.Tau != 1 {
		t.Errorf("expected Tau 1, got %g", config.Analysis.Tau)
	}
	if config.Sweep.Simulator != "uterine-simulation" {
		t.Errorf("expected Simulator 'uterine-simulation', got '%s'", config.Sweep.Simulator)
	}
	if !strings.HasSuffix(config.Paths.Base, filepath.Join("Documents", "phd")) {
		t.Errorf("expected Base to end with Documents/phd, got '%s'", config.Paths.Base)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
paths:
  base: /data/chaste
  output: /tmp/figures
logging:
  level: debug
plot:
  format: svg
analysis:
  tau: 0.5
sweep:
  simulator: my-sim
  resistance: 2.5
  mesh_spacing:
    uterus_scaffold_scaled_1: 0.4
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Paths.Base != "/data/chaste" {
		t.Errorf("expected Base '/data/chaste', got '%s'", config.Paths.Base)
	}
	if config.Paths.Output != "/tmp/figures" {
		t.Errorf("expected Output '/tmp/figures', got '%s'", config.Paths.Output)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Plot.Format != "svg" {
		t.Errorf("expected Format 'svg', got '%s'", config.Plot.Format)
	}
	// Unset fields keep their defaults.
	if config.Plot.Width != 480 {
		t.Errorf("expected default Width 480, got %g", config.Plot.Width)
	}
	if config.Analysis.Tau != 0.5 {
		t.Errorf("expected Tau 0.5, got %g", config.Analysis.Tau)
	}
	if config.Analysis.SpikeHeight != -50 {
		t.Errorf("expected default SpikeHeight -50, got %g", config.Analysis.SpikeHeight)
	}
	if config.Sweep.Simulator != "my-sim" {
		t.Errorf("expected Simulator 'my-sim', got '%s'", config.Sweep.Simulator)
	}
	if config.Sweep.Resistance != 2.5 {
		t.Errorf("expected Resistance 2.5, got %g", config.Sweep.Resistance)
	}
	if got := config.Sweep.MeshSpacing["uterus_scaffold_scaled_1"]; got != 0.4 {
		t.Errorf("expected spacing 0.4, got %g", got)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("paths: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_DefaultLocationMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected default level, got '%s'", config.Logging.Level)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SYMPROBE_BASE_DIR", "/env/base")
	t.Setenv("SYMPROBE_OUTPUT_DIR", "/env/out")
	t.Setenv("SYMPROBE_LOG_LEVEL", "trace")
	t.Setenv("SYMPROBE_SIMULATOR", "env-sim")
	t.Setenv("SYMPROBE_RESISTANCE", "3")

	config := Default()
	applyEnvOverrides(config)

	if config.Paths.Base != "/env/base" {
		t.Errorf("expected Base '/env/base', got '%s'", config.Paths.Base)
	}
	if config.Paths.Output != "/env/out" {
		t.Errorf("expected Output '/env/out', got '%s'", config.Paths.Output)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Level 'trace', got '%s'", config.Logging.Level)
	}
	if config.Sweep.Simulator != "env-sim" {
		t.Errorf("expected Simulator 'env-sim', got '%s'", config.Sweep.Simulator)
	}
	if config.Sweep.Resistance != 3 {
		t.Errorf("expected Resistance 3, got %g", config.Sweep.Resistance)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Plot.Format = "gif" }, true},
		{"zero width", func(c *Config) { c.Plot.Width = 0 }, true},
		{"negative tau", func(c *Config) { c.Analysis.Tau = -1 }, true},
		{"negative resistance", func(c *Config) { c.Sweep.Resistance = -1 }, true},
		{"bad spacing", func(c *Config) { c.Sweep.MeshSpacing = map[string]float64{"m": 0} }, true},
		{"empty level ok", func(c *Config) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("expandHome(~/data) = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome(/abs/path) = %q", got)
	}
	if got := expandHome("~user/x"); got != "~user/x" {
		t.Errorf("expandHome(~user/x) = %q", got)
	}
}
