package meshio

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/lucmobz/qslim"
)

const vtkTriangle = 5

// WriteVTK writes the live faces of m as a legacy ASCII VTK unstructured
// grid. header is written on the title line. cellScalars may be nil or hold
// one value per face slot of m, written for live faces only.
func WriteVTK(w io.Writer, m *qslim.Mesh, header string, cellScalars []float64) error {
	if cellScalars != nil && len(cellScalars) != m.NumFaces() {
		return fmt.Errorf("vtk: %d cell scalars for %d faces", len(cellScalars), m.NumFaces())
	}
	if header == "" {
		header = "qslim"
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", header)
	fmt.Fprintf(bw, "POINTS %d double\n", len(m.V))
	for _, v := range m.V {
		fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
	}
	nf := m.LiveFaces()
	fmt.Fprintf(bw, "CELLS %d %d\n", nf, 4*nf)
	for f, tri := range m.F2V {
		if !m.IsFaceDeleted(f) {
			fmt.Fprintf(bw, "3 %d %d %d\n", tri[0], tri[1], tri[2])
		}
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", nf)
	for i := 0; i < nf; i++ {
		fmt.Fprintf(bw, "%d\n", vtkTriangle)
	}
	if cellScalars != nil {
		fmt.Fprintf(bw, "CELL_DATA %d\nSCALARS cell_scalars double 1\nLOOKUP_TABLE default\n", nf)
		for f, s := range cellScalars {
			if !m.IsFaceDeleted(f) {
				fmt.Fprintf(bw, "%g\n", s)
			}
		}
	}
	return bw.Flush()
}

// WritePatchVTK writes the given faces of m as ASCII VTK polygon data, with
// the points renumbered in ascending order of their index in m. Use it with
// Mesh.EdgePatch and Mesh.VertexPatch to inspect the surroundings of a
// collapse.
func WritePatchVTK(w io.Writer, m *qslim.Mesh, faces []int) error {
	local := make(map[int]int)
	var verts []int
	for _, f := range faces {
		for _, v := range m.F2V[f] {
			if _, ok := local[v]; !ok {
				local[v] = 0
				verts = append(verts, v)
			}
		}
	}
	sort.Ints(verts)
	for i, v := range verts {
		local[v] = i
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\nData\nASCII\nDATASET POLYDATA\n")
	fmt.Fprintf(bw, "POINTS %d double\n", len(verts))
	for _, v := range verts {
		x := m.V[v]
		fmt.Fprintf(bw, "%g %g %g\n", x.X, x.Y, x.Z)
	}
	fmt.Fprintf(bw, "POLYGONS %d %d\n", len(faces), 4*len(faces))
	for _, f := range faces {
		tri := m.F2V[f]
		fmt.Fprintf(bw, "3 %d %d %d\n", local[tri[0]], local[tri[1]], local[tri[2]])
	}
	return bw.Flush()
}
