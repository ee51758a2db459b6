// Package measure compares a simplified mesh with its source and summarizes
// mesh statistics.
package measure

import (
	"fmt"
	"math"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Deviation returns the maximum and mean distance from each original point
// to the nearest live vertex of m. It is a cheap one-sided proxy for the
// Hausdorff distance between the surfaces.
func Deviation(original []r3.Vec, m *qslim.Mesh) (max, mean float64) {
	pts := make(kdtree.Points, 0, m.LiveVertices())
	for v, x := range m.V {
		if !m.IsVertexDeleted(v) {
			pts = append(pts, kdtree.Point{x.X, x.Y, x.Z})
		}
	}
	if len(pts) == 0 || len(original) == 0 {
		return math.NaN(), math.NaN()
	}
	tree := kdtree.New(pts, false)
	var sum float64
	for _, x := range original {
		// Point distances are squared.
		_, d2 := tree.Nearest(kdtree.Point{x.X, x.Y, x.Z})
		d := math.Sqrt(d2)
		sum += d
		max = math.Max(max, d)
	}
	return max, sum / float64(len(original))
}

// Area returns the total area of the live faces of m.
func Area(m *qslim.Mesh) float64 {
	var a float64
	for _, t := range m.Triangles() {
		a += d3.Triangle(t).Area()
	}
	return a
}

// Stats summarizes a mesh.
type Stats struct {
	Vertices, Faces int
	// Edges, BoundaryEdges and BoundaryLoops are only set for meshes with
	// topology.
	Edges         int
	BoundaryEdges int
	BoundaryLoops int
	Closed        bool
	Oriented      bool
	Area          float64
	Bounds        d3.Box
}

// Summarize returns the statistics of the live elements of m.
func Summarize(m *qslim.Mesh) Stats {
	s := Stats{
		Vertices: m.LiveVertices(),
		Faces:    m.LiveFaces(),
		Closed:   m.IsClosed(),
		Oriented: m.IsOriented(),
		Area:     Area(m),
	}
	if m.HasTopology() {
		s.Edges = m.LiveEdges()
		s.BoundaryEdges = len(m.BoundaryEdges())
		s.BoundaryLoops = len(m.BoundaryLoops())
	}
	var used d3.Set
	for f, tri := range m.F2V {
		if m.IsFaceDeleted(f) {
			continue
		}
		for _, v := range tri {
			used = append(used, m.V[v])
		}
	}
	if len(used) > 0 {
		s.Bounds = used.BoundingBox()
	}
	return s
}

func (s Stats) String() string {
	size := s.Bounds.Size()
	return fmt.Sprintf("vertices: %d, faces: %d, edges: %d, boundary edges: %d in %d loops, closed: %t, oriented: %t, area: %g, size: %gx%gx%g",
		s.Vertices, s.Faces, s.Edges, s.BoundaryEdges, s.BoundaryLoops, s.Closed, s.Oriented, s.Area, size.X, size.Y, size.Z)
}
