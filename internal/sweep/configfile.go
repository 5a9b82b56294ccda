// Package sweep drives an external simulator over mesh resolution,
// parameter and estrus stage sweeps by rewriting its TOML configuration
// between runs.
package sweep

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtual-uterus/symprobe/internal/constants"
)

var (
	ErrParamNotFound  = errors.New("parameter not found in configuration file")
	ErrConfigDirUnset = errors.New(constants.ConfigEnvVar + " environment variable is not set")
	ErrInvalidSweep   = errors.New("invalid sweep")
)

// configKey returns the key of a "key = value" line, or "" for comments
// and other lines.
func configKey(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
		return ""
	}
	key, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(key)
}

// formatLine renders the new line for param. Conductivities are written as
// an isotropic list, names as quoted strings.
func formatLine(param, value string) string {
	switch param {
	case "conductivities_2d":
		return fmt.Sprintf("%s = [%s, %s]", param, value, value)
	case "conductivities_3d":
		return fmt.Sprintf("%s = [%s, %s, %s]", param, value, value, value)
	case "magnitude":
		return fmt.Sprintf("%s = %s", param, value)
	case "mesh_name", "estrus":
		return fmt.Sprintf("%s = %q", param, value)
	default:
		return fmt.Sprintf("   %s = %s", param, value)
	}
}

// ModifyConfig rewrites the first line of the config file assigning param
// with value. The file keeps its permissions.
func ModifyConfig(path, param, value string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	found := false
	for i, line := range lines {
		if configKey(line) != param {
			continue
		}
		lines[i] = formatLine(param, value)
		if strings.HasSuffix(line, "\n") {
			lines[i] += "\n"
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("%w: %q in %s", ErrParamNotFound, param, path)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// readQuoted returns the quoted string values assigned to keys in path.
func readQuoted(path string, keys ...string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key := configKey(line)
		for _, k := range keys {
			if key != k {
				continue
			}
			if _, seen := values[k]; seen {
				continue
			}
			parts := strings.Split(line, `"`)
			if len(parts) >= 3 {
				values[k] = parts[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return values, nil
}

// ConfigDir returns the simulation configuration root.
func ConfigDir() (string, error) {
	dir := os.Getenv(constants.ConfigEnvVar)
	if dir == "" {
		return "", ErrConfigDirUnset
	}
	return dir, nil
}

// DimConfig returns the general configuration file of a 2D or 3D
// simulation.
func DimConfig(dim int) (string, error) {
	if err := checkDim(dim); err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "general", fmt.Sprintf("%dd_params.toml", dim)), nil
}

// CellConfig returns the cell model configuration selected by dimConfig.
// Roesler cells are configured per estrus stage.
func CellConfig(dimConfig string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	values, err := readQuoted(dimConfig, "cell_type", "estrus")
	if err != nil {
		return "", err
	}

	cellType, ok := values["cell_type"]
	if !ok {
		return "", fmt.Errorf("%w: cell_type in %s", ErrParamNotFound, dimConfig)
	}
	if cellType != "Roesler" {
		return filepath.Join(dir, "cell", cellType+".toml"), nil
	}

	estrus, ok := values["estrus"]
	if !ok {
		return "", fmt.Errorf("%w: estrus in %s", ErrParamNotFound, dimConfig)
	}
	return filepath.Join(dir, "estrus", fmt.Sprintf("%s_%s.toml", cellType, estrus)), nil
}

func checkDim(dim int) error {
	if dim != 2 && dim != 3 {
		return fmt.Errorf("%w: dimension must be 2 or 3, got %d", ErrInvalidSweep, dim)
	}
	return nil
}
