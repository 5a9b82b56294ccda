package parser

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const testLog = `Simulation started
mesh: uterus_scaffold_scaled_3
print timestep: 0.1 ms
gcal: 0.6
stim_current: -3.5 pA/pF
`

func TestGetPrintTimestep(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "sim.log", testLog)

	got, err := GetPrintTimestep(logPath)
	if err != nil {
		t.Fatalf("GetPrintTimestep failed: %v", err)
	}
	if got != 0.1 {
		t.Errorf("GetPrintTimestep = %g, want 0.1", got)
	}
}

func TestGetPrintTimestep_Errors(t *testing.T) {
	dir := t.TempDir()

	missingLine := writeFile(t, dir, "no_ts.log", "mesh: m\n")
	if _, err := GetPrintTimestep(missingLine); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	unparsable := writeFile(t, dir, "bad_ts.log", "print timestep: fast ms\n")
	if _, err := GetPrintTimestep(unparsable); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unparsable value, got %v", err)
	}

	if _, err := GetPrintTimestep(filepath.Join(dir, "absent.log")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestGetMeshName(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "sim.log", testLog)

	got, err := GetMeshName(logPath)
	if err != nil {
		t.Fatalf("GetMeshName failed: %v", err)
	}
	if got != "uterus_scaffold_scaled_3" {
		t.Errorf("GetMeshName = %q", got)
	}

	noMesh := writeFile(t, dir, "nomesh.log", "mesh_name: other\nprint timestep: 1 ms\n")
	if _, err := GetMeshName(noMesh); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetParamValue(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "sim.log", testLog)

	tests := []struct {
		param string
		want  float64
	}{
		{"gcal", 0.6},
		{"stim_current", -3.5},
	}
	for _, tt := range tests {
		got, err := GetParamValue(logPath, tt.param)
		if err != nil {
			t.Fatalf("GetParamValue(%q) failed: %v", tt.param, err)
		}
		if got != tt.want {
			t.Errorf("GetParamValue(%q) = %g, want %g", tt.param, got, tt.want)
		}
	}

	if _, err := GetParamValue(logPath, "gna"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadLog(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "sim.log", testLog)

	sl, err := ReadLog(logPath)
	if err != nil {
		t.Fatalf("ReadLog failed: %v", err)
	}
	if sl.PrintTimestep != 0.1 {
		t.Errorf("PrintTimestep = %g", sl.PrintTimestep)
	}
	if sl.Mesh != "uterus_scaffold_scaled_3" {
		t.Errorf("Mesh = %q", sl.Mesh)
	}
	if sl.Params["gcal"] != 0.6 {
		t.Errorf("Params[gcal] = %g", sl.Params["gcal"])
	}

	noMesh := writeFile(t, dir, "nomesh.log", "print timestep: 1 ms\n")
	if _, err := ReadLog(noMesh); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing mesh, got %v", err)
	}
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	// The time column is deliberately unrelated to the log timestep.
	csv := `Time,V,vtkOriginalPointIds
7,-70,30
7,-71,10
7,-72,20
8,-60,30
8,-61,10
8,-62,20
9,-50,30
9,-51,10
9,-52,20
10,-40,30
10,-41,10
10,-42,20
`
	dataPath := writeFile(t, dir, "extract/simulation_001.csv", csv)
	logPath := writeFile(t, dir, "log/simulation_001.log", testLog)

	trace, err := LoadData(dataPath, logPath, ',')
	if err != nil {
		t.Fatalf("LoadData failed: %v", err)
	}

	if r, c := trace.V.Dims(); r != 4 || c != 3 {
		t.Fatalf("V dims = (%d, %d), want (4, 3)", r, c)
	}
	if !reflect.DeepEqual(trace.CellIDs, []int{10, 20, 30}) {
		t.Errorf("CellIDs = %v", trace.CellIDs)
	}
	if got := trace.Channel(0); !reflect.DeepEqual(got, []float64{-71, -61, -51, -41}) {
		t.Errorf("column for id 10 = %v", got)
	}
	if got := trace.Channel(2); !reflect.DeepEqual(got, []float64{-70, -60, -50, -40}) {
		t.Errorf("column for id 30 = %v", got)
	}

	if len(trace.T) != trace.NumTimesteps() {
		t.Fatalf("len(T) = %d, want %d", len(trace.T), trace.NumTimesteps())
	}
	wantT := []float64{0, 1e-4, 2e-4, 3e-4}
	for i := range wantT {
		if math.Abs(trace.T[i]-wantT[i]) > 1e-12 {
			t.Errorf("T[%d] = %g, want %g", i, trace.T[i], wantT[i])
		}
	}
	if trace.Mesh != "uterus_scaffold_scaled_3" {
		t.Errorf("Mesh = %q", trace.Mesh)
	}
}

func TestLoadData_Delimiter(t *testing.T) {
	dir := t.TempDir()
	csv := "Time;V;vtkOriginalPointIds\n0;-70;1\n0;-60;2\n"
	dataPath := writeFile(t, dir, "data.csv", csv)
	logPath := writeFile(t, dir, "sim.log", testLog)

	trace, err := LoadData(dataPath, logPath, ';')
	if err != nil {
		t.Fatalf("LoadData failed: %v", err)
	}
	if trace.NumCells() != 2 || trace.NumTimesteps() != 1 {
		t.Errorf("dims = (%d, %d)", trace.NumTimesteps(), trace.NumCells())
	}
}

func TestLoadData_Errors(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "sim.log", testLog)

	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{"empty file", "", ErrEmptyData},
		{"header only", "Time,V,vtkOriginalPointIds\n", ErrEmptyData},
		{"two columns", "Time,V\n0,1\n", ErrMissingColumn},
		{"wrong id column", "Time,V,Points:0\n0,1,2\n", ErrMissingColumn},
		{"bad voltage", "Time,V,vtkOriginalPointIds\n0,abc,1\n", ErrMalformedData},
		{"ragged row", "Time,V,vtkOriginalPointIds\n0,1,1\n0,1\n", ErrMalformedData},
		{"uneven samples", "Time,V,vtkOriginalPointIds\n0,1,1\n0,1,2\n1,1,1\n", ErrMalformedData},
		{"bad quote", "Time,V,vtkOriginalPointIds\n0,\"1,1\n", ErrMalformedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataPath := writeFile(t, dir, tt.name+".csv", tt.csv)
			_, err := LoadData(dataPath, logPath, ',')
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadData error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("missing data file", func(t *testing.T) {
		_, err := LoadData(filepath.Join(dir, "absent.csv"), logPath, ',')
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("missing log file", func(t *testing.T) {
		dataPath := writeFile(t, dir, "ok.csv", "Time,V,vtkOriginalPointIds\n0,1,1\n")
		_, err := LoadData(dataPath, filepath.Join(dir, "absent.log"), ',')
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})
}

func TestGetRange(t *testing.T) {
	tests := []struct {
		name       string
		tokens     []string
		want       []int
		wantSingle bool
	}{
		{"single number", []string{"5"}, []int{5}, true},
		{"span", []string{"1-3"}, []int{1, 2, 3}, false},
		{"degenerate span", []string{"4-4"}, []int{4}, false},
		{"list", []string{"2", "4", "6"}, []int{2, 4, 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetRange(tt.tokens)
			if err != nil {
				t.Fatalf("GetRange(%v) failed: %v", tt.tokens, err)
			}
			if !reflect.DeepEqual(got.Numbers, tt.want) {
				t.Errorf("Numbers = %v, want %v", got.Numbers, tt.want)
			}
			if got.Single != tt.wantSingle {
				t.Errorf("Single = %v, want %v", got.Single, tt.wantSingle)
			}
		})
	}
}

func TestGetRange_Invalid(t *testing.T) {
	for _, tokens := range [][]string{nil, {"x"}, {"3-1"}, {"1-x"}, {"1", "b"}, {"-2"}} {
		if _, err := GetRange(tokens); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("GetRange(%v) error = %v, want ErrInvalidRange", tokens, err)
		}
	}
}

func TestDataPaths(t *testing.T) {
	dataPath, logPath := DataPaths("/fake/path", "sim", 1)
	if dataPath != "/fake/path/extract/sim_001.csv" {
		t.Errorf("dataPath = %q", dataPath)
	}
	if logPath != "/fake/path/log/sim_001.log" {
		t.Errorf("logPath = %q", logPath)
	}
}
