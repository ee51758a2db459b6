package qslim_test

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSimplifyOctahedron(t *testing.T) {
	m := mustTopology(t, must3.Octahedron(), 1)
	res, err := qslim.Simplify(m, qslim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Faces != 4 || res.Target != 4 || res.Collapses != 2 || res.Exhausted {
		t.Fatalf("unexpected result %+v", res)
	}
	if m.LiveFaces() != 4 || m.LiveVertices() != 4 {
		t.Errorf("got %d faces and %d vertices, want a tetrahedron", m.LiveFaces(), m.LiveVertices())
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if !m.IsClosed() || !m.IsOriented() {
		t.Error("simplified octahedron must stay closed and oriented")
	}
	if got, want := res.String(), "reached 4 faces, requested 4"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSimplifyStepKeepsInvariants(t *testing.T) {
	for _, test := range []struct {
		name   string
		m      *qslim.Mesh
		target int
	}{
		{name: "icosphere", m: must3.Icosphere(1, 2), target: 100},
		{name: "grid", m: must3.Grid(6, 6, r2Unit), target: 20},
		{name: "cube", m: must3.Cube(r3.Vec{X: 1, Y: 2, Z: 3}), target: 4},
	} {
		m := mustTopology(t, test.m, 3)
		cfg := qslim.DefaultConfig()
		cfg.TargetFaces = test.target
		cfg.Workers = 3
		s, err := qslim.NewSimplifier(m, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for !s.Done() {
			collapsed, _ := s.Step()
			if !collapsed {
				continue
			}
			if err := m.Validate(); err != nil {
				t.Fatalf("%s: after %d collapses: %v", test.name, s.Result().Collapses, err)
			}
			if s.Faces() != m.LiveFaces() {
				t.Fatalf("%s: simplifier counts %d faces, mesh has %d", test.name, s.Faces(), m.LiveFaces())
			}
		}
		if collapsed, more := s.Step(); collapsed || more {
			t.Errorf("%s: Step after Done returned (%t, %t)", test.name, collapsed, more)
		}
		res := s.Result()
		if res.Faces > test.target && !res.Exhausted {
			t.Errorf("%s: stopped at %d faces above target %d without exhausting the queue", test.name, res.Faces, test.target)
		}
	}
}

func TestSimplifyIcosphereTopology(t *testing.T) {
	m := mustTopology(t, must3.Icosphere(1, 2), 4)
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 100
	cfg.Workers = 4
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Closed meshes lose two faces per collapse so even targets are met exactly.
	if res.Faces != 100 || res.Collapses != 110 {
		t.Fatalf("got %d faces after %d collapses, want 100 after 110", res.Faces, res.Collapses)
	}
	if euler := m.LiveVertices() - m.LiveEdges() + m.LiveFaces(); euler != 2 {
		t.Errorf("Euler characteristic %d, want 2", euler)
	}
	if !m.IsClosed() || !m.IsOriented() {
		t.Error("sphere must stay closed and oriented")
	}
	// Simplification of a sphere stays near the sphere.
	for v, x := range m.V {
		if m.IsVertexDeleted(v) {
			continue
		}
		if r := r3.Norm(x); r < 0.9 || r > 1.1 {
			t.Errorf("vertex %d at radius %g", v, r)
		}
	}
}

func TestSimplifyGridKeepsBorder(t *testing.T) {
	for _, test := range []struct {
		n, target int
	}{
		{n: 2, target: 4},
		{n: 4, target: 8},
		{n: 6, target: 20},
	} {
		m := mustTopology(t, must3.Grid(test.n, test.n, r2Unit), 2)
		cfg := qslim.DefaultConfig()
		cfg.TargetFaces = test.target
		res, err := qslim.Simplify(m, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if res.Faces != test.target {
			t.Errorf("grid %d: got %d faces, want %d", test.n, res.Faces, test.target)
		}
		if loops := m.BoundaryLoops(); len(loops) != 1 {
			t.Errorf("grid %d: got %d boundary loops, want 1", test.n, len(loops))
		}
		for _, corner := range []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}} {
			found := false
			for v, x := range m.V {
				if !m.IsVertexDeleted(v) && r3.Norm(r3.Sub(x, corner)) < 1e-6 {
					found = true
				}
			}
			if !found {
				t.Errorf("grid %d: corner %v lost", test.n, corner)
			}
		}
		for v, x := range m.V {
			if !m.IsVertexDeleted(v) && (x.Z < -1e-9 || x.Z > 1e-9) {
				t.Errorf("grid %d: vertex %d left the plane: %v", test.n, v, x)
			}
		}
	}
}

func TestSimplifyExhausted(t *testing.T) {
	m := mustTopology(t, must3.Octahedron(), 1)
	cfg := qslim.DefaultConfig()
	// No normal can turn less than not at all.
	cfg.NormalTolerance = 1.1
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exhausted || res.Faces != 8 || res.Collapses != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if n := res.Rejected[qslim.GuardNormalFlip]; n != 12 {
		t.Errorf("got %d normal flip rejections, want one per edge", n)
	}
	if m.LiveFaces() != 8 {
		t.Error("mesh modified by rejected collapses")
	}
}

func TestSimplifyTargetAboveFaces(t *testing.T) {
	m := mustTopology(t, must3.Icosphere(1, 0), 1)
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 100
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Collapses != 0 || res.Faces != 20 || res.Exhausted {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSimplifyTargetFloor(t *testing.T) {
	m := mustTopology(t, must3.Tetrahedron(), 1)
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 0
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Target != qslim.MinFaces || res.Collapses != 0 || m.LiveFaces() != 4 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSimplifyFallbacks(t *testing.T) {
	m := mustTopology(t, must3.Grid(4, 4, r2Unit), 1)
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 8
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Interior vertices of a flat grid only see the z=0 plane.
	if res.Fallbacks == 0 {
		t.Error("expected midpoint fallbacks on a flat grid")
	}
}

func TestSimplifyNoTopology(t *testing.T) {
	_, err := qslim.Simplify(must3.Octahedron(), qslim.DefaultConfig())
	if !errors.Is(err, qslim.ErrNoTopology) {
		t.Errorf("got %v, want ErrNoTopology", err)
	}
}

func TestSimplifyWorkersAgree(t *testing.T) {
	var results []*qslim.Mesh
	for _, workers := range []int{1, 4} {
		m := mustTopology(t, must3.Icosphere(1, 2), workers)
		cfg := qslim.DefaultConfig()
		cfg.TargetFaces = 60
		cfg.Workers = workers
		if _, err := qslim.Simplify(m, cfg); err != nil {
			t.Fatal(err)
		}
		m.Compact()
		results = append(results, m)
	}
	a, b := results[0], results[1]
	if len(a.V) != len(b.V) || len(a.F2V) != len(b.F2V) {
		t.Fatalf("worker count changed the result size")
	}
	for f := range a.F2V {
		if a.F2V[f] != b.F2V[f] {
			t.Fatalf("face %d differs: %v vs %v", f, a.F2V[f], b.F2V[f])
		}
	}
	for v := range a.V {
		if a.V[v] != b.V[v] {
			t.Fatalf("vertex %d differs: %v vs %v", v, a.V[v], b.V[v])
		}
	}
}

func TestSimplifyLogger(t *testing.T) {
	var buf bytes.Buffer
	m := mustTopology(t, must3.Grid(4, 4, r2.Vec{X: 2, Y: 1}), 1)
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = 10
	cfg.Logger = log.New(&buf, "", 0)
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, res.String()) {
		t.Errorf("summary missing from log output:\n%s", out)
	}
	if !strings.Contains(out, "fell back to the edge midpoint") {
		t.Errorf("fallback count missing from log output:\n%s", out)
	}
}

func BenchmarkSimplify(b *testing.B) {
	src := must3.Icosphere(1, 4)
	for i := 0; i < b.N; i++ {
		m := src.Clone()
		if err := m.BuildTopology(4); err != nil {
			b.Fatal(err)
		}
		cfg := qslim.DefaultConfig()
		cfg.TargetFaces = 500
		cfg.Workers = 4
		if _, err := qslim.Simplify(m, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
