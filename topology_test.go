package qslim_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var r2Unit = r2.Vec{X: 1, Y: 1}

func mustTopology(t testing.TB, m *qslim.Mesh, workers int) *qslim.Mesh {
	t.Helper()
	if err := m.BuildTopology(workers); err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuildTopologyOctahedron(t *testing.T) {
	for _, workers := range []int{1, 2, 5} {
		m := mustTopology(t, must3.Octahedron(), workers)
		if m.NumEdges() != 12 || m.LiveEdges() != 12 {
			t.Fatalf("workers=%d: got %d edges, want 12", workers, m.NumEdges())
		}
		want := [][2]int{{0, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 2}, {1, 3}, {1, 4}, {1, 5}, {2, 4}, {2, 5}, {3, 4}, {3, 5}}
		for e, ev := range want {
			if m.Edge(e) != ev {
				t.Errorf("workers=%d: edge %d is %v, want %v", workers, e, m.Edge(e), ev)
			}
			if m.IsBoundaryEdge(e) || m.Flaps(e)[1] == qslim.NoIndex {
				t.Errorf("workers=%d: edge %d on boundary of a closed mesh", workers, e)
			}
		}
		for v := 0; v < m.NumVertices(); v++ {
			if n := len(m.VertexNeighbors(v)); n != 4 {
				t.Errorf("vertex %d has %d neighbors, want 4", v, n)
			}
			if m.IsBoundaryVertex(v) {
				t.Errorf("vertex %d on boundary of a closed mesh", v)
			}
		}
		for f := 0; f < m.NumFaces(); f++ {
			tri := m.F2V[f]
			centroid := r3.Scale(1./3, r3.Add(r3.Add(m.V[tri[0]], m.V[tri[1]]), m.V[tri[2]]))
			if r3.Dot(m.FaceNormal(f), centroid) <= 0 {
				t.Errorf("face %d normal %v points inward", f, m.FaceNormal(f))
			}
			// Twice the area of an equilateral triangle with side sqrt(2).
			if a := m.FaceArea(f); a < 1.732 || a > 1.733 {
				t.Errorf("face %d area %g, want sqrt(3)", f, a)
			}
			if n := len(m.FaceNeighbors(f)); n != 6 {
				t.Errorf("face %d has %d vertex-sharing neighbors, want 6", f, n)
			}
		}
		if !m.IsClosed() || !m.IsOriented() || !m.IsEdgeManifold() {
			t.Error("octahedron must be closed, oriented and edge-manifold")
		}
		if len(m.BoundaryEdges()) != 0 || m.BoundaryLoops() != nil {
			t.Error("octahedron has no boundary")
		}
	}
}

func TestBuildTopologyGrid(t *testing.T) {
	m := mustTopology(t, must3.Grid(2, 2, r2Unit), 2)
	if got, want := m.BoundaryEdges(), []int{0, 1, 3, 6, 8, 13, 14, 15}; !reflect.DeepEqual(got, want) {
		t.Errorf("boundary edges %v, want %v", got, want)
	}
	loops := m.BoundaryLoops()
	if len(loops) != 1 || len(loops[0]) != 8 {
		t.Errorf("got boundary loops %v, want one loop of 8 edges", loops)
	}
	for v := 0; v < m.NumVertices(); v++ {
		if m.IsBoundaryVertex(v) == (v == 4) {
			t.Errorf("vertex %d boundary mark %t", v, m.IsBoundaryVertex(v))
		}
	}
	if m.IsClosed() {
		t.Error("grid reported closed")
	}
	if got, want := m.VertexFaces(4), []int{0, 1, 3, 4, 6, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("faces of center vertex %v, want %v", got, want)
	}
}

func TestBuildTopologyTwoLoops(t *testing.T) {
	// Two disjoint grids side by side.
	a := must3.Grid(1, 1, r2Unit)
	b := must3.Grid(1, 1, r2Unit)
	m := qslim.NewMesh(append(a.V, b.V...), a.F2V)
	for _, tri := range b.F2V {
		m.F2V = append(m.F2V, [3]int{tri[0] + 4, tri[1] + 4, tri[2] + 4})
	}
	mustTopology(t, m, 1)
	if loops := m.BoundaryLoops(); len(loops) != 2 {
		t.Errorf("got %d boundary loops, want 2", len(loops))
	}
}

func TestBuildTopologyErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		m    *qslim.Mesh
		want error
	}{
		{name: "empty", m: &qslim.Mesh{}, want: qslim.ErrEmptyMesh},
		{
			name: "out of range",
			m:    qslim.NewMesh(make([]r3.Vec, 3), [][3]int{{0, 1, 3}}),
			want: qslim.ErrBadFaceIndex,
		},
		{
			name: "repeated vertex",
			m:    qslim.NewMesh(make([]r3.Vec, 3), [][3]int{{0, 1, 1}}),
			want: qslim.ErrBadFaceIndex,
		},
		{
			name: "three flaps",
			m: qslim.NewMesh(
				[]r3.Vec{{}, {X: 1}, {Y: 1}, {Y: -1}, {Z: 1}},
				[][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}},
			),
			want: qslim.ErrNonManifoldEdge,
		},
	} {
		err := test.m.BuildTopology(2)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.want)
		}
	}
}

func TestValidateWithoutTopology(t *testing.T) {
	if err := must3.Tetrahedron().Validate(); !errors.Is(err, qslim.ErrNoTopology) {
		t.Errorf("got %v, want ErrNoTopology", err)
	}
}
