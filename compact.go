package qslim

// Compress removes the entries of buf marked in removed, keeping the order of
// the others, and returns the map from old to new index. Removed entries map
// to NoIndex. buf is compacted in place.
func Compress[T any](buf []T, removed []bool) ([]T, []int) {
	if len(removed) != len(buf) {
		panic("bug: Compress removal marks do not match buffer length")
	}
	remap := make([]int, len(buf))
	n := 0
	for i := range buf {
		if removed[i] {
			remap[i] = NoIndex
			continue
		}
		buf[n] = buf[i]
		remap[i] = n
		n++
	}
	return buf[:n], remap
}

// unreferenced marks the entries of a buffer of length n that no face corner
// in idx points at.
func unreferenced(n int, idx [][3]int) []bool {
	removed := make([]bool, n)
	for i := range removed {
		removed[i] = true
	}
	for _, tri := range idx {
		for _, i := range tri {
			removed[i] = false
		}
	}
	return removed
}

func reindex(idx [][3]int, remap []int) {
	for f := range idx {
		for i, v := range idx[f] {
			idx[f][i] = remap[v]
		}
	}
}

// Compact removes deleted faces, vertices no live face references and
// attribute entries no live face corner references, then reindexes the faces.
// Connectivity is discarded: call BuildTopology to simplify again. Compact
// returns the map from old to new vertex index, NoIndex for removed vertices.
// Compacting a compact mesh leaves its buffers unchanged.
func (m *Mesh) Compact() []int {
	nf := len(m.F2V)
	fremoved := make([]bool, nf)
	for f := range fremoved {
		fremoved[f] = m.IsFaceDeleted(f)
	}
	m.F2V, _ = Compress(m.F2V, fremoved)
	if len(m.F2T) == nf {
		m.F2T, _ = Compress(m.F2T, fremoved)
	}
	if len(m.F2N) == nf {
		m.F2N, _ = Compress(m.F2N, fremoved)
	}

	var vmap []int
	m.V, vmap = Compress(m.V, unreferenced(len(m.V), m.F2V))
	reindex(m.F2V, vmap)
	if len(m.F2T) > 0 {
		var tmap []int
		m.T, tmap = Compress(m.T, unreferenced(len(m.T), m.F2T))
		reindex(m.F2T, tmap)
	}
	if len(m.F2N) > 0 {
		var nmap []int
		m.N, nmap = Compress(m.N, unreferenced(len(m.N), m.F2N))
		reindex(m.F2N, nmap)
	}
	m.clearTopology()
	return vmap
}

func (m *Mesh) clearTopology() {
	m.v2f, m.v2v, m.f2f, m.v2e = nil, nil, nil, nil
	m.e2v, m.e2f = nil, nil
	m.fn, m.fa = nil, nil
	m.vdel, m.fdel, m.edel = nil, nil, nil
	m.bedge, m.bvert = nil, nil
}
