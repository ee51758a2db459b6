package qslim_test

import (
	"reflect"
	"testing"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCompress(t *testing.T) {
	for _, test := range []struct {
		buf       []string
		removed   []bool
		want      []string
		wantRemap []int
	}{
		{
			buf:       []string{"a", "b", "c", "d"},
			removed:   []bool{false, true, false, true},
			want:      []string{"a", "c"},
			wantRemap: []int{0, qslim.NoIndex, 1, qslim.NoIndex},
		},
		{
			buf:       []string{"a", "b"},
			removed:   []bool{false, false},
			want:      []string{"a", "b"},
			wantRemap: []int{0, 1},
		},
		{
			buf:       []string{"a"},
			removed:   []bool{true},
			want:      []string{},
			wantRemap: []int{qslim.NoIndex},
		},
	} {
		got, remap := qslim.Compress(test.buf, test.removed)
		if !reflect.DeepEqual(got, test.want) || !reflect.DeepEqual(remap, test.wantRemap) {
			t.Errorf("Compress(%v): got %v %v, want %v %v", test.removed, got, remap, test.want, test.wantRemap)
		}
	}
}

func TestCompressLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	qslim.Compress([]int{1, 2}, []bool{true})
}

func TestCompactAfterSimplify(t *testing.T) {
	m := mustTopology(t, must3.Octahedron(), 1)
	if _, err := qslim.Simplify(m, qslim.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	live := m.Triangles()
	vmap := m.Compact()
	if m.HasTopology() {
		t.Error("Compact must discard connectivity")
	}
	if m.NumFaces() != 4 || m.NumVertices() != 4 {
		t.Fatalf("got %d faces and %d vertices, want 4 and 4", m.NumFaces(), m.NumVertices())
	}
	if len(vmap) != 6 {
		t.Fatalf("vertex map has %d entries, want 6", len(vmap))
	}
	removed := 0
	for _, nv := range vmap {
		if nv == qslim.NoIndex {
			removed++
		}
	}
	if removed != 2 {
		t.Errorf("%d vertices mapped to NoIndex, want 2", removed)
	}
	if got := m.Triangles(); !reflect.DeepEqual(got, live) {
		t.Errorf("compaction changed the geometry: %v vs %v", got, live)
	}
	if !m.IsClosed() || !m.IsOriented() {
		t.Error("compacted mesh must be closed and oriented")
	}
	// A compact mesh compacts to itself.
	v, f := append(m.V[:0:0], m.V...), append(m.F2V[:0:0], m.F2V...)
	vmap = m.Compact()
	for i, nv := range vmap {
		if nv != i {
			t.Errorf("second Compact moved vertex %d to %d", i, nv)
		}
	}
	if !reflect.DeepEqual(v, m.V) || !reflect.DeepEqual(f, m.F2V) {
		t.Error("second Compact changed the buffers")
	}
	// And can be simplified again.
	mustTopology(t, m, 1)
}

func TestCompactAttributes(t *testing.T) {
	m := must3.Grid(3, 3, r2.Vec{X: 3, Y: 3})
	for _, x := range m.V {
		m.T = append(m.T, r2.Vec{X: x.X / 3, Y: x.Y / 3})
	}
	m.F2T = append([][3]int(nil), m.F2V...)
	// Two unused texture coordinates at the end.
	m.T = append(m.T, r2.Vec{}, r2.Vec{})
	mustTopology(t, m, 2)
	m.SmoothNormals()
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 8
	if _, err := qslim.Simplify(m, cfg); err != nil {
		t.Fatal(err)
	}
	nt := len(m.T)
	m.Compact()
	if len(m.F2T) != len(m.F2V) || len(m.F2N) != len(m.F2V) {
		t.Fatalf("attribute indices not compacted with faces: %d, %d for %d faces", len(m.F2T), len(m.F2N), len(m.F2V))
	}
	if len(m.T) > nt-2 {
		t.Errorf("unreferenced texture coordinates kept: %d of %d", len(m.T), nt)
	}
	for f := range m.F2V {
		for i := 0; i < 3; i++ {
			if m.F2T[f][i] < 0 || m.F2T[f][i] >= len(m.T) || m.F2N[f][i] < 0 || m.F2N[f][i] >= len(m.N) {
				t.Fatalf("face %d attribute index out of range: %v %v", f, m.F2T[f], m.F2N[f])
			}
		}
	}
}
