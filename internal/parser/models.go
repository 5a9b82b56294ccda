package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Distinguished parsing errors. Missing files wrap fs.ErrNotExist instead.
var (
	ErrEmptyData     = errors.New("file is empty")
	ErrMalformedData = errors.New("could not parse file")
	ErrMissingColumn = errors.New("missing required column")
	ErrNotFound      = errors.New("value not found in log file")
	ErrInvalidRange  = errors.New("invalid simulation range")
)

// Trace is one simulation export: a voltage matrix with one column per
// monitored cell, and the time vector rebuilt from the log's print timestep.
type Trace struct {
	V       *mat.Dense // timesteps x cells, mV
	T       []float64  // seconds, starting at zero
	CellIDs []int      // point id of each column of V
	Mesh    string     // mesh name read from the log
	LogPath string
}

// NumTimesteps returns the number of rows of V.
func (tr *Trace) NumTimesteps() int {
	r, _ := tr.V.Dims()
	return r
}

// NumCells returns the number of columns of V.
func (tr *Trace) NumCells() int {
	_, c := tr.V.Dims()
	return c
}

// Channel returns a copy of column j of V.
func (tr *Trace) Channel(j int) []float64 {
	return mat.Col(nil, j, tr.V)
}

// SimulationLog holds the values read from a simulation log.
type SimulationLog struct {
	PrintTimestep float64 // ms
	Mesh          string
	Params        map[string]float64
}

// SimRange is a normalised simulation number selection. Single is set when
// the user gave one bare number, as opposed to a list holding one number.
type SimRange struct {
	Numbers []int
	Single  bool
}

// Len returns the number of selected simulations.
func (r SimRange) Len() int {
	return len(r.Numbers)
}

// SimFileName returns the zero-padded file stem of simulation n.
func SimFileName(simName string, n int) string {
	return fmt.Sprintf("%s_%03d", simName, n)
}

// DataPaths returns the CSV export and log paths of simulation n under dir,
// following the <dir>/extract/<stem>.csv and <dir>/log/<stem>.log layout.
func DataPaths(dir, simName string, n int) (dataPath, logPath string) {
	stem := SimFileName(simName, n)
	return filepath.Join(dir, "extract", stem+".csv"), filepath.Join(dir, "log", stem+".log")
}
