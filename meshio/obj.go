package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucmobz/qslim"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ reads a Wavefront OBJ mesh. It understands v, vt and vn records and
// faces with corners given as v, v/t, v//n or v/t/n, with 1-based or negative
// relative indices. Polygons are triangulated as a fan around their first
// corner. Other records are ignored.
func ReadOBJ(r io.Reader) (*qslim.Mesh, error) {
	m := &qslim.Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var x [3]float64
			if err = parseFloats(x[:], fields[1:]); err == nil {
				m.V = append(m.V, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
			}
		case "vt":
			var x [2]float64
			if err = parseFloats(x[:], fields[1:]); err == nil {
				m.T = append(m.T, r2.Vec{X: x[0], Y: x[1]})
			}
		case "vn":
			var x [3]float64
			if err = parseFloats(x[:], fields[1:]); err == nil {
				m.N = append(m.N, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
			}
		case "f":
			err = parseFace(m, fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.F2T) != 0 && len(m.F2T) != len(m.F2V) {
		return nil, fmt.Errorf("obj: %d of %d faces have texture indices: %w", len(m.F2T), len(m.F2V), ErrFormat)
	}
	if len(m.F2N) != 0 && len(m.F2N) != len(m.F2V) {
		return nil, fmt.Errorf("obj: %d of %d faces have normal indices: %w", len(m.F2N), len(m.F2V), ErrFormat)
	}
	return m, nil
}

// parseFloats parses the leading len(dst) fields. Extra fields, such as the
// optional w of a vertex, are ignored.
func parseFloats(dst []float64, fields []string) error {
	if len(fields) < len(dst) {
		return fmt.Errorf("want %d coordinates, got %d: %w", len(dst), len(fields), ErrFormat)
	}
	for i := range dst {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return fmt.Errorf("%v: %w", err, ErrFormat)
		}
		dst[i] = f
	}
	return nil
}

// corner holds 0-based vertex, texture and normal indices, NoIndex if absent.
type corner [3]int

func parseCorner(s string, counts [3]int) (corner, error) {
	c := corner{qslim.NoIndex, qslim.NoIndex, qslim.NoIndex}
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("bad face corner %q: %w", s, ErrFormat)
	}
	for i, p := range parts {
		if p == "" {
			// v//n
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("bad face corner %q: %w", s, ErrFormat)
		}
		switch {
		case idx > 0:
			idx--
		case idx < 0:
			idx += counts[i]
		default:
			return c, fmt.Errorf("zero index in face corner %q: %w", s, ErrFormat)
		}
		if idx < 0 || idx >= counts[i] {
			return c, fmt.Errorf("face corner %q out of range: %w", s, ErrFormat)
		}
		c[i] = idx
	}
	return c, nil
}

func parseFace(m *qslim.Mesh, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face has %d corners: %w", len(fields), ErrFormat)
	}
	counts := [3]int{len(m.V), len(m.T), len(m.N)}
	corners := make([]corner, len(fields))
	for i, s := range fields {
		c, err := parseCorner(s, counts)
		if err != nil {
			return err
		}
		if i > 0 {
			first := corners[0]
			if (c[1] == qslim.NoIndex) != (first[1] == qslim.NoIndex) || (c[2] == qslim.NoIndex) != (first[2] == qslim.NoIndex) {
				return fmt.Errorf("face mixes corner formats: %w", ErrFormat)
			}
		}
		corners[i] = c
	}
	c0 := corners[0]
	for i := 2; i < len(corners); i++ {
		c1, c2 := corners[i-1], corners[i]
		m.F2V = append(m.F2V, [3]int{c0[0], c1[0], c2[0]})
		if c0[1] != qslim.NoIndex {
			m.F2T = append(m.F2T, [3]int{c0[1], c1[1], c2[1]})
		}
		if c0[2] != qslim.NoIndex {
			m.F2N = append(m.F2N, [3]int{c0[2], c1[2], c2[2]})
		}
	}
	return nil
}

// WriteOBJ writes the vertices, texture coordinates, normals and faces of m.
// Deleted faces are skipped but vertex indices are written as stored, so m
// is usually compacted first. Face corners carry texture and normal indices
// when F2T and F2N are present.
func WriteOBJ(w io.Writer, m *qslim.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.V {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, t := range m.T {
		fmt.Fprintf(bw, "vt %g %g\n", t.X, t.Y)
	}
	for _, n := range m.N {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}
	hasT := len(m.F2T) == len(m.F2V) && len(m.T) > 0
	hasN := len(m.F2N) == len(m.F2V) && len(m.N) > 0
	for f, tri := range m.F2V {
		if m.IsFaceDeleted(f) {
			continue
		}
		bw.WriteString("f")
		for i, v := range tri {
			switch {
			case hasT && hasN:
				fmt.Fprintf(bw, " %d/%d/%d", v+1, m.F2T[f][i]+1, m.F2N[f][i]+1)
			case hasT:
				fmt.Fprintf(bw, " %d/%d", v+1, m.F2T[f][i]+1)
			case hasN:
				fmt.Fprintf(bw, " %d//%d", v+1, m.F2N[f][i]+1)
			default:
				fmt.Fprintf(bw, " %d", v+1)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
