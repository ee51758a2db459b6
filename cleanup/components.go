package cleanup

import (
	"sort"

	"github.com/lucmobz/qslim"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components groups the faces of m into components connected through shared
// vertices. Faces within a component are ascending and components are ordered
// by their first face, so the largest component is not necessarily first.
func Components(m *qslim.Mesh) [][]int {
	g := simple.NewUndirectedGraph()
	for f := range m.F2V {
		g.AddNode(simple.Node(f))
	}
	// Chaining the faces around each vertex is enough for connectivity.
	last := make([]int, len(m.V))
	for i := range last {
		last[i] = qslim.NoIndex
	}
	for f, tri := range m.F2V {
		for _, v := range tri {
			if prev := last[v]; prev != qslim.NoIndex && prev != f && !g.HasEdgeBetween(int64(prev), int64(f)) {
				g.SetEdge(simple.Edge{F: simple.Node(prev), T: simple.Node(f)})
			}
			last[v] = f
		}
	}
	cc := topo.ConnectedComponents(g)
	comps := make([][]int, len(cc))
	for i, nodes := range cc {
		faces := make([]int, len(nodes))
		for j, n := range nodes {
			faces[j] = int(n.ID())
		}
		sort.Ints(faces)
		comps[i] = faces
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// Largest returns the index of the component with the most faces, the first
// one on ties.
func Largest(comps [][]int) int {
	best := 0
	for i, c := range comps {
		if len(c) > len(comps[best]) {
			best = i
		}
	}
	return best
}

// Split returns one mesh per component. Vertex, texture and normal buffers
// are reindexed in order of first reference by the component's faces.
func Split(m *qslim.Mesh, comps [][]int) []*qslim.Mesh {
	out := make([]*qslim.Mesh, len(comps))
	for i, faces := range comps {
		c := &qslim.Mesh{F2V: make([][3]int, len(faces))}
		for j, f := range faces {
			c.F2V[j] = m.F2V[f]
		}
		c.V = gather(m.V, c.F2V)
		if len(m.F2T) == len(m.F2V) && len(m.T) > 0 {
			c.F2T = make([][3]int, len(faces))
			for j, f := range faces {
				c.F2T[j] = m.F2T[f]
			}
			c.T = gather(m.T, c.F2T)
		}
		if len(m.F2N) == len(m.F2V) && len(m.N) > 0 {
			c.F2N = make([][3]int, len(faces))
			for j, f := range faces {
				c.F2N[j] = m.F2N[f]
			}
			c.N = gather(m.N, c.F2N)
		}
		out[i] = c
	}
	return out
}

// gather copies the entries of buf referenced by idx in order of first
// reference and rewrites idx to point into the copy.
func gather[T any](buf []T, idx [][3]int) []T {
	remap := make(map[int]int)
	var out []T
	for f := range idx {
		for i, old := range idx[f] {
			n, ok := remap[old]
			if !ok {
				n = len(out)
				out = append(out, buf[old])
				remap[old] = n
			}
			idx[f][i] = n
		}
	}
	return out
}
