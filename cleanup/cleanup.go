// Package cleanup repairs raw meshes before simplification: it removes
// duplicate and non-manifold faces, merges coincident vertices and splits a
// mesh into its connected components.
package cleanup

import (
	"fmt"

	"github.com/lucmobz/qslim"
	"gonum.org/v1/gonum/spatial/r3"
)

// DuplicateFaces marks every face whose vertex set equals that of an earlier
// face, regardless of winding.
func DuplicateFaces(f2v [][3]int) []bool {
	dup := make([]bool, len(f2v))
	seen := make(map[[3]int]struct{}, len(f2v))
	for f, tri := range f2v {
		key := sort3(tri)
		if _, ok := seen[key]; ok {
			dup[f] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return dup
}

func sort3(t [3]int) [3]int {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	return t
}

// NonManifoldFaces visits faces in order counting the faces seen on each
// undirected edge, and marks every face that brings an edge count above 2.
func NonManifoldFaces(f2v [][3]int) []bool {
	nm := make([]bool, len(f2v))
	count := make(map[[2]int]int, 3*len(f2v)/2)
	for f, tri := range f2v {
		for i := range tri {
			a, b := tri[i], tri[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			count[[2]int{a, b}]++
			if count[[2]int{a, b}] > 2 {
				nm[f] = true
			}
		}
	}
	return nm
}

// DuplicateVertices marks every position equal to an earlier one. first maps
// each vertex to the index of the first vertex at its position.
func DuplicateVertices(v []r3.Vec) (dup []bool, first []int) {
	dup = make([]bool, len(v))
	first = make([]int, len(v))
	seen := make(map[r3.Vec]int, len(v))
	for i, x := range v {
		if j, ok := seen[x]; ok {
			dup[i] = true
			first[i] = j
			continue
		}
		seen[x] = i
		first[i] = i
	}
	return dup, first
}

// DegenerateFaces marks faces that repeat a vertex index.
func DegenerateFaces(f2v [][3]int) []bool {
	deg := make([]bool, len(f2v))
	for f, tri := range f2v {
		deg[f] = tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0]
	}
	return deg
}

// RemoveFaces drops the marked faces of m along with their texture and
// normal corner indices.
func RemoveFaces(m *qslim.Mesh, removed []bool) {
	nf := len(m.F2V)
	m.F2V, _ = qslim.Compress(m.F2V, removed)
	if len(m.F2T) == nf {
		m.F2T, _ = qslim.Compress(m.F2T, removed)
	}
	if len(m.F2N) == nf {
		m.F2N, _ = qslim.Compress(m.F2N, removed)
	}
}

// MergeVertices replaces every duplicated vertex position by its first
// occurrence and returns the number of vertices removed. Faces collapsed by
// the merge are left in place, see DegenerateFaces.
func MergeVertices(m *qslim.Mesh) int {
	dup, first := DuplicateVertices(m.V)
	var remap []int
	m.V, remap = qslim.Compress(m.V, dup)
	for f := range m.F2V {
		for i, v := range m.F2V[f] {
			m.F2V[f][i] = remap[first[v]]
		}
	}
	return count(dup)
}

// Report describes the repairs made by Clean.
type Report struct {
	DuplicateFaces    int
	NonManifoldFaces  int
	DuplicateVertices int
	DegenerateFaces   int
	// UnusedVertices counts vertices no face referenced after the repairs.
	UnusedVertices int
	// Oriented and EdgeManifold describe the input before repairs.
	Oriented     bool
	EdgeManifold bool
}

func (r Report) String() string {
	return fmt.Sprintf("duplicate faces: %d, non-manifold faces: %d, duplicate vertices: %d, degenerate faces: %d, unused vertices: %d, oriented: %t, edge-manifold: %t",
		r.DuplicateFaces, r.NonManifoldFaces, r.DuplicateVertices, r.DegenerateFaces, r.UnusedVertices, r.Oriented, r.EdgeManifold)
}

// Clean returns a repaired copy of m, leaving m untouched. In order it drops
// duplicate faces, drops non-manifold faces, merges coincident vertices, drops
// faces the merge made degenerate and removes unreferenced vertices.
// The result may still be non-oriented or disconnected.
func Clean(m *qslim.Mesh) (*qslim.Mesh, Report) {
	c := m.Clone()
	rep := Report{
		Oriented:     c.IsOriented(),
		EdgeManifold: c.IsEdgeManifold(),
	}
	dup := DuplicateFaces(c.F2V)
	rep.DuplicateFaces = count(dup)
	RemoveFaces(c, dup)

	nm := NonManifoldFaces(c.F2V)
	rep.NonManifoldFaces = count(nm)
	RemoveFaces(c, nm)

	rep.DuplicateVertices = MergeVertices(c)
	deg := DegenerateFaces(c.F2V)
	rep.DegenerateFaces = count(deg)
	RemoveFaces(c, deg)

	nv := len(c.V)
	c.Compact()
	rep.UnusedVertices = nv - len(c.V)
	return c, rep
}

func count(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
