package qslim

import (
	"fmt"
	"sort"

	"github.com/lucmobz/qslim/internal/parallel"
	"gonum.org/v1/gonum/spatial/r3"
)

// BuildTopology derives all connectivity tables, face normals and areas from
// V and F2V. The mesh must be an oriented 2-manifold triangle mesh, see the
// cleanup package. workers is the number of goroutines used by the
// parallelizable passes.
//
// BuildTopology must not be called once collapses have started; connectivity
// is then maintained by CollapseEdge. Call Compact first to start over.
func (m *Mesh) BuildTopology(workers int) error {
	if len(m.F2V) == 0 {
		return ErrEmptyMesh
	}
	for _, del := range [][]bool{m.vdel, m.fdel, m.edel} {
		for _, d := range del {
			if d {
				panic("bug: BuildTopology called on a mesh with deleted elements, call Compact first")
			}
		}
	}
	m.vdel, m.fdel, m.edel = nil, nil, nil
	nv := len(m.V)
	for f, tri := range m.F2V {
		for i, v := range tri {
			if v < 0 || v >= nv {
				return fmt.Errorf("face %d vertex %d out of range [0,%d): %w", f, v, nv, ErrBadFaceIndex)
			}
			if v == tri[(i+1)%3] {
				return fmt.Errorf("face %d repeats vertex %d: %w", f, v, ErrBadFaceIndex)
			}
		}
	}
	m.buildVertexFaces()
	m.buildVertexVertices(workers)
	m.buildFaceFaces(workers)
	if err := m.buildEdges(workers); err != nil {
		return err
	}
	m.computeNormalsAndAreas(workers)
	m.vdel = make([]bool, nv)
	m.fdel = make([]bool, len(m.F2V))
	m.edel = make([]bool, len(m.e2v))
	m.bedge = make([]bool, len(m.e2v))
	m.bvert = make([]bool, nv)
	for e, fl := range m.e2f {
		if fl[1] == NoIndex {
			m.bedge[e] = true
			m.bvert[m.e2v[e][0]] = true
			m.bvert[m.e2v[e][1]] = true
		}
	}
	return nil
}

// buildVertexFaces lists each face under its three vertices. Lists come out
// sorted since faces are visited in order.
func (m *Mesh) buildVertexFaces() {
	m.v2f = make([][]int, len(m.V))
	for f, tri := range m.F2V {
		for _, v := range tri {
			m.v2f[v] = append(m.v2f[v], f)
		}
	}
}

func (m *Mesh) buildVertexVertices(workers int) {
	m.v2v = make([][]int, len(m.V))
	parallel.Task(workers, len(m.V), func(_, start, end int) {
		for v := start; v < end; v++ {
			adj := make([]int, 0, 2*len(m.v2f[v]))
			for _, f := range m.v2f[v] {
				for _, vv := range m.F2V[f] {
					if vv != v {
						adj = append(adj, vv)
					}
				}
			}
			m.v2v[v] = sortUnique(adj)
		}
	})
}

func (m *Mesh) buildFaceFaces(workers int) {
	m.f2f = make([][]int, len(m.F2V))
	parallel.Task(workers, len(m.F2V), func(_, start, end int) {
		for f := start; f < end; f++ {
			m.f2f[f] = m.appendFaceNeighbors(make([]int, 0, 12), f)
		}
	})
}

// appendFaceNeighbors appends the sorted set of live faces sharing a vertex
// with f, excluding f, to dst.
func (m *Mesh) appendFaceNeighbors(dst []int, f int) []int {
	for _, v := range m.F2V[f] {
		for _, ff := range m.v2f[v] {
			if ff != f && (m.fdel == nil || !m.fdel[ff]) {
				dst = append(dst, ff)
			}
		}
	}
	return sortUnique(dst)
}

// buildEdges emits one edge per adjacent vertex pair (v, vv) with v < vv,
// then the vertex->edge lists and the edge flaps.
func (m *Mesh) buildEdges(workers int) error {
	nv := len(m.V)
	// Count edges owned by each vertex so shards can fill e2v without
	// synchronizing.
	offsets := make([]int, nv+1)
	parallel.Task(workers, nv, func(_, start, end int) {
		for v := start; v < end; v++ {
			n := 0
			for _, vv := range m.v2v[v] {
				if v < vv {
					n++
				}
			}
			offsets[v+1] = n
		}
	})
	for v := 0; v < nv; v++ {
		offsets[v+1] += offsets[v]
	}
	m.e2v = make([][2]int, offsets[nv])
	parallel.Task(workers, nv, func(_, start, end int) {
		for v := start; v < end; v++ {
			e := offsets[v]
			for _, vv := range m.v2v[v] {
				if v < vv {
					m.e2v[e] = [2]int{v, vv}
					e++
				}
			}
		}
	})

	m.v2e = make([][]int, nv)
	for e, ev := range m.e2v {
		m.v2e[ev[0]] = append(m.v2e[ev[0]], e)
		m.v2e[ev[1]] = append(m.v2e[ev[1]], e)
	}

	m.e2f = make([][2]int, len(m.e2v))
	errs := make([]error, max(workers, 1))
	parallel.Task(workers, len(m.e2v), func(shard, start, end int) {
		var buf [3]int
		for e := start; e < end; e++ {
			ev := m.e2v[e]
			n := intersectSorted(buf[:], m.v2f[ev[0]], m.v2f[ev[1]])
			if n > 2 {
				errs[shard] = fmt.Errorf("edge %d (%d,%d): %w", e, ev[0], ev[1], ErrNonManifoldEdge)
				return
			}
			if n == 0 {
				panic("bug: edge without flaps")
			}
			m.e2f[e] = [2]int{buf[0], NoIndex}
			if n == 2 {
				m.e2f[e][1] = buf[1]
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Mesh) computeNormalsAndAreas(workers int) {
	m.fn = make([]r3.Vec, len(m.F2V))
	m.fa = make([]float64, len(m.F2V))
	parallel.Task(workers, len(m.F2V), func(_, start, end int) {
		for f := start; f < end; f++ {
			tri := m.F2V[f]
			m.fn[f], m.fa[f] = triangleNormal(m.V[tri[0]], m.V[tri[1]], m.V[tri[2]])
		}
	})
}

// triangleNormal returns the unit normal of triangle (a,b,c) and the magnitude
// of the unnormalized normal. The normal is zero for degenerate triangles.
func triangleNormal(a, b, c r3.Vec) (r3.Vec, float64) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	norm := r3.Norm(n)
	if norm != 0 {
		n = r3.Scale(1/norm, n)
	}
	return n, norm
}

// intersectSorted writes up to len(dst) common elements of sorted a and b into
// dst and returns the total number of common elements.
func intersectSorted(dst, a, b []int) int {
	n := 0
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			if n < len(dst) {
				dst[n] = a[i]
			}
			n++
			i++
			j++
		}
	}
	return n
}

// sortUnique sorts s and removes repeated entries in place.
func sortUnique(s []int) []int {
	sort.Ints(s)
	if len(s) == 0 {
		return s
	}
	j := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[j-1] {
			s[j] = s[i]
			j++
		}
	}
	return s[:j]
}

// insertSorted inserts x into sorted s keeping it sorted. Present values are
// not duplicated.
func insertSorted(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	if i < len(s) && s[i] == x {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = x
	return s
}

// machine epsilons used as numeric thresholds.
const (
	float32Eps = 0x1p-23
	float64Eps = 0x1p-52
)
