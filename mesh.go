package qslim

import (
	"errors"

	"github.com/lucmobz/qslim/internal/parallel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoIndex marks an absent face, vertex or edge reference, such as the second
// flap of a boundary edge.
const NoIndex = -1

var (
	// ErrNonManifoldEdge is returned by BuildTopology when an edge is shared
	// by more than two faces.
	ErrNonManifoldEdge = errors.New("non-manifold edge with more than 2 flaps")
	// ErrBadFaceIndex is returned when a face references a vertex out of range
	// or repeats a vertex.
	ErrBadFaceIndex = errors.New("bad face vertex index")
	// ErrEmptyMesh is returned for meshes without faces.
	ErrEmptyMesh = errors.New("mesh has no faces")
)

// Mesh is a triangle mesh stored as parallel index-addressable tables.
// Loaders fill the exported buffers; BuildTopology derives the connectivity
// which collapses then mutate in place. Deleted elements keep their slots and
// are marked with tombstones until Compact is called.
type Mesh struct {
	// V holds vertex positions.
	V []r3.Vec
	// T holds texture coordinates referenced by F2T.
	T []r2.Vec
	// N holds normals referenced by F2N.
	N []r3.Vec
	// F2V holds the vertex indices of each face, counter-clockwise.
	F2V [][3]int
	// F2T is empty or holds per-corner texture indices parallel to F2V.
	F2T [][3]int
	// F2N is empty or holds per-corner normal indices parallel to F2V.
	F2N [][3]int

	// vertex->incident faces, sorted ascending at all times.
	v2f [][]int
	// vertex->adjacent vertices. Sorted until a collapse touches the list.
	v2v [][]int
	// face->faces sharing at least one vertex.
	f2f [][]int
	// edge->vertices, lower index first at build time.
	e2v [][2]int
	// vertex->incident edges.
	v2e [][]int
	// edge->flap faces. Slot 1 is NoIndex for boundary edges.
	e2f [][2]int

	// fn are unit face normals, fa the cross product magnitudes.
	fn []r3.Vec
	fa []float64

	vdel, fdel, edel []bool
	bedge, bvert     []bool
}

// NewMesh returns a mesh over positions and faces without connectivity.
// The slices are used directly, not copied.
func NewMesh(positions []r3.Vec, faces [][3]int) *Mesh {
	return &Mesh{V: positions, F2V: faces}
}

// NumVertices returns the number of vertex slots including deleted ones.
func (m *Mesh) NumVertices() int { return len(m.V) }

// NumFaces returns the number of face slots including deleted ones.
func (m *Mesh) NumFaces() int { return len(m.F2V) }

// NumEdges returns the number of edge slots including deleted ones.
func (m *Mesh) NumEdges() int { return len(m.e2v) }

// HasTopology reports whether BuildTopology has run since the last Compact.
func (m *Mesh) HasTopology() bool { return m.v2f != nil && len(m.fdel) == len(m.F2V) }

// LiveVertices counts vertices not marked deleted.
func (m *Mesh) LiveVertices() int { return countLive(len(m.V), m.vdel) }

// LiveFaces counts faces not marked deleted.
func (m *Mesh) LiveFaces() int { return countLive(len(m.F2V), m.fdel) }

// LiveEdges counts edges not marked deleted.
func (m *Mesh) LiveEdges() int { return countLive(len(m.e2v), m.edel) }

func countLive(n int, del []bool) int {
	if len(del) != n {
		return n
	}
	c := 0
	for _, d := range del {
		if !d {
			c++
		}
	}
	return c
}

// IsVertexDeleted reports whether vertex v has been collapsed away.
func (m *Mesh) IsVertexDeleted(v int) bool { return len(m.vdel) > v && m.vdel[v] }

// IsFaceDeleted reports whether face f has been collapsed away.
func (m *Mesh) IsFaceDeleted(f int) bool { return len(m.fdel) > f && m.fdel[f] }

// IsEdgeDeleted reports whether edge e has been collapsed away.
func (m *Mesh) IsEdgeDeleted(e int) bool { return len(m.edel) > e && m.edel[e] }

// IsBoundaryEdge reports whether edge e has a single flap face.
func (m *Mesh) IsBoundaryEdge(e int) bool { return m.bedge[e] }

// IsBoundaryVertex reports whether vertex v touches a boundary edge.
func (m *Mesh) IsBoundaryVertex(v int) bool { return m.bvert[v] }

// Edge returns the two vertices of edge e.
func (m *Mesh) Edge(e int) [2]int { return m.e2v[e] }

// Flaps returns the faces adjacent to edge e. The second is NoIndex on the boundary.
func (m *Mesh) Flaps(e int) [2]int { return m.e2f[e] }

// FaceNormal returns the unit normal of face f.
func (m *Mesh) FaceNormal(f int) r3.Vec { return m.fn[f] }

// FaceArea returns the magnitude of the cross product of the edges of face f,
// twice the triangle area.
func (m *Mesh) FaceArea(f int) float64 { return m.fa[f] }

// VertexFaces returns the live faces incident to v in ascending order.
func (m *Mesh) VertexFaces(v int) []int { return live(nil, m.v2f[v], m.fdel) }

// VertexNeighbors returns the live vertices adjacent to v.
func (m *Mesh) VertexNeighbors(v int) []int { return live(nil, m.v2v[v], m.vdel) }

// VertexEdges returns the live edges incident to v.
func (m *Mesh) VertexEdges(v int) []int { return live(nil, m.v2e[v], m.edel) }

// FaceNeighbors returns the live faces sharing at least one vertex with f.
func (m *Mesh) FaceNeighbors(f int) []int { return live(nil, m.f2f[f], m.fdel) }

// live appends the entries of list not marked in del to dst.
func live(dst, list []int, del []bool) []int {
	for _, i := range list {
		if !del[i] {
			dst = append(dst, i)
		}
	}
	return dst
}

// parallelFaces calls fn for every live face from workers goroutines.
func parallelFaces(m *Mesh, workers int, fn func(f int)) {
	parallel.Task(workers, len(m.F2V), func(_, start, end int) {
		for f := start; f < end; f++ {
			if !m.IsFaceDeleted(f) {
				fn(f)
			}
		}
	})
}

// parallelVertices calls fn for every live vertex from workers goroutines.
func parallelVertices(m *Mesh, workers int, fn func(v int)) {
	parallel.Task(workers, len(m.V), func(_, start, end int) {
		for v := start; v < end; v++ {
			if !m.IsVertexDeleted(v) {
				fn(v)
			}
		}
	})
}

// other returns the endpoint of edge e that is not v.
func (m *Mesh) other(e, v int) int {
	ev := m.e2v[e]
	if ev[0] == v {
		return ev[1]
	}
	return ev[0]
}

// opposite returns the vertex of face f that is neither a nor b.
func (m *Mesh) opposite(f, a, b int) int {
	for _, v := range m.F2V[f] {
		if v != a && v != b {
			return v
		}
	}
	panic("bug: face has no vertex opposite to edge")
}

// otherFlap returns the flap of edge e that is not f, possibly NoIndex.
func (m *Mesh) otherFlap(e, f int) int {
	fl := m.e2f[e]
	if fl[0] == f {
		return fl[1]
	}
	if fl[1] != f {
		panic("bug: face is not a flap of edge")
	}
	return fl[0]
}

// Triangles returns the vertex positions of every live face.
func (m *Mesh) Triangles() [][3]r3.Vec {
	tris := make([][3]r3.Vec, 0, len(m.F2V))
	for f, tri := range m.F2V {
		if m.IsFaceDeleted(f) {
			continue
		}
		tris = append(tris, [3]r3.Vec{m.V[tri[0]], m.V[tri[1]], m.V[tri[2]]})
	}
	return tris
}

// Clone returns a deep copy of the raw buffers of m without connectivity or
// deletion marks.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		V:   append([]r3.Vec(nil), m.V...),
		T:   append([]r2.Vec(nil), m.T...),
		N:   append([]r3.Vec(nil), m.N...),
		F2V: append([][3]int(nil), m.F2V...),
		F2T: append([][3]int(nil), m.F2T...),
		F2N: append([][3]int(nil), m.F2N...),
	}
	return c
}
