package form3_test

import (
	"strings"
	"testing"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3"
	"github.com/lucmobz/qslim/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNamed(t *testing.T) {
	for _, test := range []struct {
		name         string
		detail       int
		verts, faces int
		closed       bool
	}{
		{"tetrahedron", 0, 4, 4, true},
		{"octahedron", 0, 6, 8, true},
		{"cube", 0, 8, 12, true},
		{"grid", 3, 16, 18, false},
		{"sphere", 0, 12, 20, true},
		{"sphere", 2, 162, 320, true},
	} {
		m, err := form3.Named(test.name, test.detail)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if len(m.V) != test.verts || len(m.F2V) != test.faces {
			t.Errorf("%s %d: got %d vertices and %d faces, want %d and %d", test.name, test.detail, len(m.V), len(m.F2V), test.verts, test.faces)
		}
		if err := m.BuildTopology(1); err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if m.IsClosed() != test.closed || !m.IsOriented() {
			t.Errorf("%s: closed %t, oriented %t", test.name, m.IsClosed(), m.IsOriented())
		}
		if test.closed {
			if euler := m.LiveVertices() - m.LiveEdges() + m.LiveFaces(); euler != 2 {
				t.Errorf("%s: Euler characteristic %d", test.name, euler)
			}
			checkOutward(t, test.name, m)
		}
	}
}

// checkOutward tests that the faces of a convex shape centered at the origin
// face away from it.
func checkOutward(t *testing.T, name string, m *qslim.Mesh) {
	t.Helper()
	for f, tri := range m.Triangles() {
		tri := d3.Triangle(tri)
		if r3.Dot(tri.Normal(), tri.Centroid()) <= 0 {
			t.Errorf("%s: face %d points inward", name, f)
		}
	}
}

func TestShapeErrors(t *testing.T) {
	if _, err := form3.Named("torus", 1); err == nil || !strings.Contains(err.Error(), "unknown shape torus") {
		t.Errorf("unknown shape: %v", err)
	}
	if _, err := form3.Cube(r3.Vec{X: 1, Y: 0, Z: 1}); err == nil {
		t.Error("flat cube accepted")
	}
	if _, err := form3.Grid(0, 2, r2.Vec{X: 1, Y: 1}); err == nil {
		t.Error("empty grid accepted")
	}
	if _, err := form3.Grid(2, 2, r2.Vec{X: -1, Y: 1}); err == nil {
		t.Error("negative grid size accepted")
	}
	if _, err := form3.Icosphere(1, -1); err == nil {
		t.Error("negative subdivisions accepted")
	}
	if _, err := form3.Named("sphere", -1); err == nil {
		t.Error("negative sphere detail accepted")
	}
}

func TestErrMsg(t *testing.T) {
	err := form3.ErrMsg("bad")
	if msg := err.Error(); !strings.Contains(msg, "form3_test.TestErrMsg line") || !strings.HasSuffix(msg, ": bad") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestGridLayout(t *testing.T) {
	m, err := form3.Grid(2, 1, r2.Vec{X: 4, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Vertex (i,j) has index j*(nx+1)+i.
	if got, want := m.V[4], (r3.Vec{X: 2, Y: 1}); got != want {
		t.Errorf("vertex 4 at %v, want %v", got, want)
	}
	for f, tri := range m.Triangles() {
		if n := d3.Triangle(tri).Normal(); n != (r3.Vec{Z: 1}) {
			t.Errorf("face %d normal %v", f, n)
		}
	}
}
