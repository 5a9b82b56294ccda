package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadTetGen reads the <base>.node and <base>.ele files of a TetGen mesh.
// Node numbering may start at 0 or 1; element indices are converted to
// zero-based.
func ReadTetGen(base string) (*Mesh, error) {
	nodes, firstIdx, err := readNodes(base + ".node")
	if err != nil {
		return nil, err
	}
	elements, err := readElements(base+".ele", firstIdx, len(nodes))
	if err != nil {
		return nil, err
	}
	return &Mesh{
		Name:     filepath.Base(base),
		Nodes:    nodes,
		Elements: elements,
	}, nil
}

// records yields the whitespace separated fields of every non-empty line
// of path, with # comments removed.
func records(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("mesh file at %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer f.Close()
	return readRecords(f, path)
}

func readRecords(r io.Reader, name string) ([][]string, error) {
	var out [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMalformedMesh, name)
	}
	return out, nil
}

func readNodes(path string) ([]r3.Vec, int, error) {
	recs, err := records(path)
	if err != nil {
		return nil, 0, err
	}

	header, err := atois(recs[0][:min(len(recs[0]), 2)])
	if err != nil || len(header) < 2 {
		return nil, 0, fmt.Errorf("%w: %s: bad header %v", ErrMalformedMesh, path, recs[0])
	}
	count, dim := header[0], header[1]
	if dim != 3 {
		return nil, 0, fmt.Errorf("%w: %s: dimension %d, want 3", ErrMalformedMesh, path, dim)
	}
	if len(recs)-1 < count {
		return nil, 0, fmt.Errorf("%w: %s: %d nodes declared, %d found", ErrMalformedMesh, path, count, len(recs)-1)
	}

	nodes := make([]r3.Vec, count)
	firstIdx := 0
	for i, rec := range recs[1 : count+1] {
		if len(rec) < 4 {
			return nil, 0, fmt.Errorf("%w: %s: node record %v", ErrMalformedMesh, path, rec)
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: node index %q", ErrMalformedMesh, path, rec[0])
		}
		if i == 0 {
			firstIdx = idx
		}
		if idx != firstIdx+i {
			return nil, 0, fmt.Errorf("%w: %s: node %d out of sequence", ErrMalformedMesh, path, idx)
		}

		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = strconv.ParseFloat(rec[k+1], 64); err != nil {
				return nil, 0, fmt.Errorf("%w: %s: node %d coordinate %q", ErrMalformedMesh, path, idx, rec[k+1])
			}
		}
		nodes[i] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}
	return nodes, firstIdx, nil
}

func readElements(path string, firstIdx, nbNodes int) ([][4]int, error) {
	recs, err := records(path)
	if err != nil {
		return nil, err
	}

	header, err := atois(recs[0][:min(len(recs[0]), 2)])
	if err != nil || len(header) < 2 {
		return nil, fmt.Errorf("%w: %s: bad header %v", ErrMalformedMesh, path, recs[0])
	}
	count, perTet := header[0], header[1]
	if perTet != 4 && perTet != 10 {
		return nil, fmt.Errorf("%w: %s: %d nodes per tetrahedron", ErrMalformedMesh, path, perTet)
	}
	if len(recs)-1 < count {
		return nil, fmt.Errorf("%w: %s: %d elements declared, %d found", ErrMalformedMesh, path, count, len(recs)-1)
	}

	elements := make([][4]int, count)
	for i, rec := range recs[1 : count+1] {
		if len(rec) < 1+perTet {
			return nil, fmt.Errorf("%w: %s: element record %v", ErrMalformedMesh, path, rec)
		}
		corners, err := atois(rec[1:5])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: element %s: %w", ErrMalformedMesh, path, rec[0], err)
		}
		for k, n := range corners {
			n -= firstIdx
			if n < 0 || n >= nbNodes {
				return nil, fmt.Errorf("%w: %s: element %s references node %d", ErrMalformedMesh, path, rec[0], corners[k])
			}
			elements[i][k] = n
		}
	}
	return elements, nil
}

func atois(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
