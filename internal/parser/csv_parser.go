package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/virtual-uterus/symprobe/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// LoadData reads a ParaView CSV export and its simulation log.
//
// The export holds the columns [time, voltage, point id, ...] with one row
// per cell per timestep. Rows are grouped by point id into one column per
// cell, ordered by ascending id. The time column is ignored: the time
// vector, in seconds, is rebuilt from the log's print timestep.
func LoadData(dataPath, logPath string, delimiter rune) (*Trace, error) {
	file, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("data file at %s not found: %w", dataPath, err)
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	ids, voltages, err := readExport(file, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dataPath, err)
	}

	simLog, err := ReadLog(logPath)
	if err != nil {
		return nil, err
	}

	v, cellIDs, err := deinterleave(ids, voltages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dataPath, err)
	}

	nbTimesteps, _ := v.Dims()
	t := make([]float64, nbTimesteps)
	for k := range t {
		t[k] = float64(k) * simLog.PrintTimestep * 1e-3
	}

	return &Trace{
		V:       v,
		T:       t,
		CellIDs: cellIDs,
		Mesh:    simLog.Mesh,
		LogPath: logPath,
	}, nil
}

// readExport parses the CSV body into parallel point id and voltage slices.
func readExport(r io.Reader, delimiter rune) ([]int, []float64, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyData
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	if len(header) < 3 {
		return nil, nil, fmt.Errorf("%w: missing point IDs in export", ErrMissingColumn)
	}
	if name := strings.Trim(strings.TrimSpace(header[2]), `"`); name != constants.PointIDColumn {
		return nil, nil, fmt.Errorf("%w: incorrect column %s", ErrMissingColumn, name)
	}

	var (
		ids      []int
		voltages []float64
	)
	for rowIdx := 2; ; rowIdx++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d voltage %q", ErrMalformedData, rowIdx, row[1])
		}
		idVal, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || idVal != math.Trunc(idVal) {
			return nil, nil, fmt.Errorf("%w: row %d point id %q", ErrMalformedData, rowIdx, row[2])
		}

		ids = append(ids, int(idVal))
		voltages = append(voltages, v)
	}

	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: no data rows", ErrEmptyData)
	}
	return ids, voltages, nil
}

// deinterleave lays the per-row samples out as one column per unique point
// id. Every id must contribute the same number of samples.
func deinterleave(ids []int, voltages []float64) (*mat.Dense, []int, error) {
	byID := make(map[int][]float64)
	for i, id := range ids {
		byID[id] = append(byID[id], voltages[i])
	}

	cellIDs := make([]int, 0, len(byID))
	for id := range byID {
		cellIDs = append(cellIDs, id)
	}
	sort.Ints(cellIDs)

	nbTimesteps := len(byID[cellIDs[0]])
	for _, id := range cellIDs[1:] {
		if n := len(byID[id]); n != nbTimesteps {
			return nil, nil, fmt.Errorf("%w: point %d has %d samples, point %d has %d",
				ErrMalformedData, id, n, cellIDs[0], nbTimesteps)
		}
	}

	v := mat.NewDense(nbTimesteps, len(cellIDs), nil)
	for j, id := range cellIDs {
		v.SetCol(j, byID[id])
	}
	return v, cellIDs, nil
}
