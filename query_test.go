package qslim_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"
)

func countFlags(flags []qslim.EdgeFlag) map[qslim.EdgeFlag]int {
	c := make(map[qslim.EdgeFlag]int)
	for _, f := range flags {
		c[f]++
	}
	return c
}

func TestSharpEdgesCube(t *testing.T) {
	m := mustTopology(t, must3.Cube(r3.Vec{X: 1, Y: 1, Z: 1}), 1)
	if m.NumEdges() != 18 {
		t.Fatalf("cube has %d edges, want 18", m.NumEdges())
	}
	got := countFlags(m.SharpEdges(-0.5, 0.5))
	if got[qslim.EdgeSharp] != 12 || got[qslim.EdgeSmooth] != 6 || got[qslim.EdgeBoundary] != 0 {
		t.Errorf("got %v, want 12 sharp and 6 smooth edges", got)
	}
}

func TestSharpEdgesGrid(t *testing.T) {
	m := mustTopology(t, must3.Grid(2, 2, r2Unit), 1)
	got := countFlags(m.SharpEdges(-1, 1))
	if got[qslim.EdgeBoundary] != 8 || got[qslim.EdgeSmooth] != 8 {
		t.Errorf("got %v, want 8 boundary and 8 smooth edges", got)
	}
}

func TestHardEdges(t *testing.T) {
	m := mustTopology(t, must3.Cube(r3.Vec{X: 1, Y: 1, Z: 1}), 1)
	if got := countFlags(m.HardEdges()); got[qslim.EdgeSmooth] != 18 {
		t.Errorf("without normals: %v", got)
	}
	m.SmoothNormals()
	if got := countFlags(m.HardEdges()); got[qslim.EdgeSmooth] != 18 {
		t.Errorf("smooth normals: %v", got)
	}
	// One normal per side: only the cube edges are hard.
	m.N = m.N[:0]
	m.F2N = m.F2N[:0]
	for f := 0; f < m.NumFaces(); f++ {
		side := f / 2
		if f%2 == 0 {
			m.N = append(m.N, m.FaceNormal(f))
		}
		m.F2N = append(m.F2N, [3]int{side, side, side})
	}
	if got := countFlags(m.HardEdges()); got[qslim.EdgeSharp] != 12 || got[qslim.EdgeSmooth] != 6 {
		t.Errorf("flat normals: %v", got)
	}
}

func TestSmoothNormalsSphere(t *testing.T) {
	m := mustTopology(t, must3.Icosphere(2, 2), 2)
	m.SmoothNormals()
	if len(m.N) != m.NumVertices() || !reflect.DeepEqual(m.F2N, m.F2V) {
		t.Fatal("expected one normal per vertex indexed like the vertices")
	}
	for v, n := range m.N {
		if math.Abs(r3.Norm(n)-1) > 1e-12 {
			t.Fatalf("normal %d not unit: %v", v, n)
		}
		// Vertex normals of a sphere point away from its center.
		if cos := r3.Dot(n, r3.Unit(m.V[v])); cos < 0.99 {
			t.Errorf("vertex %d normal deviates from radial direction: cos=%g", v, cos)
		}
	}
}

func TestPatches(t *testing.T) {
	m := mustTopology(t, must3.Octahedron(), 1)
	verts, faces := m.VertexPatch(4)
	if !reflect.DeepEqual(verts, []int{0, 1, 2, 3, 4}) || !reflect.DeepEqual(faces, []int{0, 1, 2, 3}) {
		t.Errorf("vertex patch %v %v", verts, faces)
	}
	verts, faces = m.EdgePatch(edgeIndex(t, m, 0, 4))
	if !reflect.DeepEqual(verts, []int{0, 1, 2, 3, 4, 5}) || !reflect.DeepEqual(faces, []int{0, 1, 2, 3, 4, 7}) {
		t.Errorf("edge patch %v %v", verts, faces)
	}
}

func TestOrientationQueries(t *testing.T) {
	m := must3.Octahedron()
	m.F2V[0][1], m.F2V[0][2] = m.F2V[0][2], m.F2V[0][1]
	if m.IsOriented() {
		t.Error("flipped face not detected")
	}
	if !m.IsClosed() || !m.IsEdgeManifold() {
		t.Error("flipping a face does not open the mesh")
	}
	fan := qslim.NewMesh(
		[]r3.Vec{{}, {X: 1}, {Y: 1}, {Y: -1}, {Z: 1}},
		[][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}},
	)
	if fan.IsEdgeManifold() || fan.IsClosed() {
		t.Error("three faces on one edge reported manifold")
	}
}
