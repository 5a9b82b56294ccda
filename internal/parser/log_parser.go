package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const floatPattern = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

var (
	timestepRe = regexp.MustCompile(`print timestep:\s*(` + floatPattern + `)\s*ms`)
	meshRe     = regexp.MustCompile(`\bmesh:\s*(\S+)`)
)

// scanLog calls fn for each line of the log at path until fn returns true.
func scanLog(path string, fn func(line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("log file at %s not found: %w", path, err)
		}
		return fmt.Errorf("error reading log file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if fn(scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}
	return nil
}

// GetPrintTimestep extracts the print timestep, in ms, from the log file.
func GetPrintTimestep(logPath string) (float64, error) {
	var (
		timestep float64
		found    bool
	)
	err := scanLog(logPath, func(line string) bool {
		m := timestepRe.FindStringSubmatch(line)
		if m == nil {
			return false
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return false
		}
		timestep, found = v, true
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("print timestep: %w", ErrNotFound)
	}
	return timestep, nil
}

// GetMeshName extracts the mesh name from the log file.
func GetMeshName(logPath string) (string, error) {
	var mesh string
	err := scanLog(logPath, func(line string) bool {
		if m := meshRe.FindStringSubmatch(line); m != nil {
			mesh = m[1]
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if mesh == "" {
		return "", fmt.Errorf("mesh name: %w", ErrNotFound)
	}
	return mesh, nil
}

// GetParamValue extracts the numeric value of parameter from the log file.
func GetParamValue(logPath, parameter string) (float64, error) {
	re, err := regexp.Compile(`(?:^|[^\w])` + regexp.QuoteMeta(parameter) + `\s*:\s*(` + floatPattern + `)`)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", parameter, err)
	}

	var (
		value float64
		found bool
	)
	err = scanLog(logPath, func(line string) bool {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return false
		}
		v, perr := strconv.ParseFloat(m[1], 64)
		if perr != nil {
			return false
		}
		value, found = v, true
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("parameter %s: %w", parameter, ErrNotFound)
	}
	return value, nil
}

// ReadLog reads the print timestep, mesh name, and every numeric
// "key: value" line of a log in one pass. Both the timestep and the mesh
// name are required.
func ReadLog(logPath string) (*SimulationLog, error) {
	sl := &SimulationLog{Params: make(map[string]float64)}
	var haveTimestep bool

	err := scanLog(logPath, func(line string) bool {
		if !haveTimestep {
			if m := timestepRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					sl.PrintTimestep = v
					haveTimestep = true
				}
			}
		}
		if sl.Mesh == "" {
			if m := meshRe.FindStringSubmatch(line); m != nil {
				sl.Mesh = m[1]
			}
		}

		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			return false
		}
		key = strings.TrimSpace(key)
		fields := strings.Fields(rest)
		if key == "" || len(fields) == 0 {
			return false
		}
		if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
			if _, seen := sl.Params[key]; !seen {
				sl.Params[key] = v
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	if !haveTimestep {
		return nil, fmt.Errorf("print timestep: %w", ErrNotFound)
	}
	if sl.Mesh == "" {
		return nil, fmt.Errorf("mesh name: %w", ErrNotFound)
	}
	return sl, nil
}
