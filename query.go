package qslim

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeFlag classifies edges for SharpEdges and HardEdges.
type EdgeFlag uint8

const (
	EdgeSmooth EdgeFlag = iota
	EdgeSharp
	EdgeBoundary
)

// directedEdges counts the directed edges of live faces. It does not require
// topology.
func (m *Mesh) directedEdges() map[[2]int]int {
	de := make(map[[2]int]int, 3*len(m.F2V))
	for f, tri := range m.F2V {
		if m.IsFaceDeleted(f) {
			continue
		}
		for i := range tri {
			de[[2]int{tri[i], tri[(i+1)%3]}]++
		}
	}
	return de
}

// IsOriented reports whether no directed edge appears twice among the live
// faces, that is whether adjacent faces agree on their winding.
func (m *Mesh) IsOriented() bool {
	for _, n := range m.directedEdges() {
		if n > 1 {
			return false
		}
	}
	return true
}

func undirected(de map[[2]int]int) map[[2]int]int {
	ue := make(map[[2]int]int, len(de))
	for e, n := range de {
		if e[0] > e[1] {
			e[0], e[1] = e[1], e[0]
		}
		ue[e] += n
	}
	return ue
}

// IsEdgeManifold reports whether every edge of the live faces is shared by at
// most two faces.
func (m *Mesh) IsEdgeManifold() bool {
	for _, n := range undirected(m.directedEdges()) {
		if n > 2 {
			return false
		}
	}
	return true
}

// IsClosed reports whether every edge of the live faces is shared by exactly
// two faces.
func (m *Mesh) IsClosed() bool {
	for _, n := range undirected(m.directedEdges()) {
		if n != 2 {
			return false
		}
	}
	return true
}

// BoundaryEdges returns the live boundary edges in ascending order.
func (m *Mesh) BoundaryEdges() []int {
	var be []int
	for e := range m.e2v {
		if !m.edel[e] && m.bedge[e] {
			be = append(be, e)
		}
	}
	return be
}

// BoundaryLoops groups the live boundary edges into connected loops. Each
// loop lists its edges in ascending order and loops are ordered by their
// first edge.
func (m *Mesh) BoundaryLoops() [][]int {
	be := m.BoundaryEdges()
	if len(be) == 0 {
		return nil
	}
	g := simple.NewUndirectedGraph()
	for _, e := range be {
		ev := m.e2v[e]
		g.SetEdge(simple.Edge{F: simple.Node(ev[0]), T: simple.Node(ev[1])})
	}
	comp := make(map[int64]int)
	for i, cc := range topo.ConnectedComponents(g) {
		for _, n := range cc {
			comp[n.ID()] = i
		}
	}
	byComp := make(map[int][]int)
	for _, e := range be {
		c := comp[int64(m.e2v[e][0])]
		byComp[c] = append(byComp[c], e)
	}
	loops := make([][]int, 0, len(byComp))
	for _, loop := range byComp {
		loops = append(loops, loop)
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i][0] < loops[j][0] })
	return loops
}

// SharpEdges flags live edges whose flap normals have a cosine strictly
// between min and max. Boundary edges are flagged EdgeBoundary.
func (m *Mesh) SharpEdges(min, max float64) []EdgeFlag {
	flags := make([]EdgeFlag, len(m.e2v))
	for e, fl := range m.e2f {
		switch {
		case m.edel[e]:
		case fl[1] == NoIndex:
			flags[e] = EdgeBoundary
		default:
			cos := r3.Dot(m.fn[fl[0]], m.fn[fl[1]])
			if cos > min && cos < max {
				flags[e] = EdgeSharp
			}
		}
	}
	return flags
}

// HardEdges flags live edges across which the normal indices of F2N are
// discontinuous. Boundary edges are flagged EdgeBoundary. Without F2N only
// boundary edges are flagged.
func (m *Mesh) HardEdges() []EdgeFlag {
	flags := make([]EdgeFlag, len(m.e2v))
	hasNormals := len(m.F2N) == len(m.F2V)
	corner := func(f, v int) int {
		for i, vv := range m.F2V[f] {
			if vv == v {
				return m.F2N[f][i]
			}
		}
		panic("bug: vertex not in face")
	}
	for e, fl := range m.e2f {
		switch {
		case m.edel[e]:
		case fl[1] == NoIndex:
			flags[e] = EdgeBoundary
		case hasNormals:
			v0, v1 := m.e2v[e][0], m.e2v[e][1]
			if corner(fl[0], v0) != corner(fl[1], v0) || corner(fl[0], v1) != corner(fl[1], v1) {
				flags[e] = EdgeSharp
			}
		}
	}
	return flags
}

// SmoothNormals replaces N and F2N with one normal per vertex: the unit sum of
// the normals of its live faces weighted by their squared area.
func (m *Mesh) SmoothNormals() {
	n := make([]r3.Vec, len(m.V))
	for f, tri := range m.F2V {
		if m.fdel[f] {
			continue
		}
		w := r3.Scale(m.fa[f]*m.fa[f], m.fn[f])
		for _, v := range tri {
			n[v] = r3.Add(n[v], w)
		}
	}
	for v := range n {
		if norm := r3.Norm(n[v]); norm > 0 {
			n[v] = r3.Scale(1/norm, n[v])
		}
	}
	m.N = n
	m.F2N = append(m.F2N[:0], m.F2V...)
}

// VertexPatch returns v with its live neighbors, sorted, and its live faces.
func (m *Mesh) VertexPatch(v int) (verts, faces []int) {
	verts = append(m.VertexNeighbors(v), v)
	return sortUnique(verts), m.VertexFaces(v)
}

// EdgePatch returns the live vertices and faces around both endpoints of e,
// sorted, as seen by the guards for a collapse of e.
func (m *Mesh) EdgePatch(e int) (verts, faces []int) {
	ev := m.e2v[e]
	for _, v := range ev {
		verts = live(verts, m.v2v[v], m.vdel)
		faces = live(faces, m.v2f[v], m.fdel)
	}
	return sortUnique(verts), sortUnique(faces)
}
