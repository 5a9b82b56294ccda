package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Figure is a rendered plot awaiting storage or inclusion in a report.
type Figure struct {
	Key     string // file stem and PDF image name
	Title   string
	Caption string
	Data    []byte
	Format  string
}

// WriteFigure stores data as <dir>/<name>.<format> and returns the path.
func WriteFigure(dir, name, format string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("figure %s is empty", name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name+"."+format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write figure: %w", err)
	}
	return path, nil
}
