package qslim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Collapse describes the outcome of CollapseEdge.
type Collapse struct {
	// Survivor is the vertex kept and moved to the merge position.
	Survivor int
	// Removed is the vertex merged into Survivor and deleted.
	Removed int
	// FacesRemoved is 2 for interior edges and 1 for boundary edges.
	FacesRemoved int
	// Pinched lists vertices deleted because they lost their last face.
	Pinched []int
}

// CollapseEdge merges the second vertex of edge e into the first, moves the
// survivor to x and repairs every connectivity table touched by the merge.
// The flap faces of e are deleted along with the flap edges on the removed
// vertex side. Table lengths never change, only deletion marks and a bounded
// set of references around the edge.
//
//	    s
//	   /f\
//	v0___v1
//	   \g/
//	    t
//
// After collapsing (v0, v1): v1, f and g are deleted, edges (v1,s) and (v1,t)
// are deleted, edges (v0,s) and (v0,t) inherit the faces on the far side of f
// and g, and every other edge and face of v1 now references v0.
//
// CollapseEdge does not check whether the collapse is legal, see CanCollapse.
// It panics if e, its vertices or its flaps are deleted.
func (m *Mesh) CollapseEdge(e int, x r3.Vec) Collapse {
	if m.edel[e] {
		panic(fmt.Sprintf("bug: collapse of deleted edge %d", e))
	}
	v0, v1 := m.e2v[e][0], m.e2v[e][1]
	if v0 == v1 || m.vdel[v0] || m.vdel[v1] {
		panic(fmt.Sprintf("bug: collapse of edge %d with invalid vertices (%d,%d)", e, v0, v1))
	}
	f0, f1 := m.e2f[e][0], m.e2f[e][1]
	if f0 == NoIndex || f0 == f1 || m.fdel[f0] || (f1 != NoIndex && m.fdel[f1]) {
		panic(fmt.Sprintf("bug: collapse of edge %d with invalid flaps (%d,%d)", e, f0, f1))
	}
	vf0 := m.opposite(f0, v0, v1)
	vf1 := NoIndex
	if f1 != NoIndex {
		vf1 = m.opposite(f1, v0, v1)
	}
	if vf0 == vf1 || m.vdel[vf0] || (vf1 != NoIndex && m.vdel[vf1]) {
		panic(fmt.Sprintf("bug: edge %d is topologically degenerate", e))
	}

	c := Collapse{Survivor: v0, Removed: v1, FacesRemoved: 1}
	if m.bvert[v1] {
		m.bvert[v0] = true
	}
	m.V[v0] = x

	m.fdel[f0] = true
	if f1 != NoIndex {
		m.fdel[f1] = true
		c.FacesRemoved = 2
	}

	// Faces of v1 now reference v0. v2f[v0] is kept sorted.
	for _, f := range m.v2f[v1] {
		if m.fdel[f] {
			continue
		}
		tri := &m.F2V[f]
		for i := range tri {
			if tri[i] == v1 {
				tri[i] = v0
				break
			}
		}
		m.v2f[v0] = insertSorted(m.v2f[v0], f)
	}

	// Neighbors of v1 other than v0 and the flap vertices become neighbors of
	// v0. Shared neighbors beyond the flap vertices are rejected by the guards.
	for _, v := range m.v2v[v1] {
		if v == v0 || v == vf0 || v == vf1 || m.vdel[v] {
			continue
		}
		m.v2v[v0] = append(m.v2v[v0], v)
		adj := m.v2v[v]
		for i, vv := range adj {
			if vv == v1 {
				adj[i] = v0
				break
			}
		}
	}

	m.vdel[v1] = true
	m.edel[e] = true

	// Surviving flap edges on the v0 side and the faces across them.
	ef0, ef1 := NoIndex, NoIndex
	ff0, ff1 := NoIndex, NoIndex
	for _, ee := range m.v2e[v0] {
		if m.edel[ee] {
			continue
		}
		switch m.other(ee, v0) {
		case vf0:
			ef0 = ee
			ff0 = m.otherFlap(ee, f0)
		case vf1:
			ef1 = ee
			ff1 = m.otherFlap(ee, f1)
		}
	}
	if ef0 == NoIndex || (vf1 != NoIndex && ef1 == NoIndex) {
		panic(fmt.Sprintf("bug: missing flap edges collapsing edge %d", e))
	}

	for _, ee := range m.v2e[v1] {
		if m.edel[ee] {
			continue
		}
		vv := m.other(ee, v1)
		switch {
		case vv == vf0:
			m.edel[ee] = true
			if m.mergeFlap(ef0, f0, m.otherFlap(ee, f0), ff0) {
				m.vdel[vf0] = true
				c.Pinched = append(c.Pinched, vf0)
			}
		case vf1 != NoIndex && vv == vf1:
			m.edel[ee] = true
			if m.mergeFlap(ef1, f1, m.otherFlap(ee, f1), ff1) {
				m.vdel[vf1] = true
				c.Pinched = append(c.Pinched, vf1)
			}
		default:
			ev := &m.e2v[ee]
			if ev[0] == v1 {
				ev[0] = v0
			} else {
				ev[1] = v0
			}
			m.v2e[v0] = append(m.v2e[v0], ee)
		}
	}

	// Faces around v0 gained or lost neighbors through the merge.
	for _, f := range m.v2f[v0] {
		if !m.fdel[f] {
			m.f2f[f] = m.appendFaceNeighbors(m.f2f[f][:0], f)
		}
	}
	return c
}

// mergeFlap replaces dying flap f of surviving edge ef by ff, the face across
// the sibling edge being deleted. If neither ef nor the sibling had a face on
// their far side the pinched edge ef is deleted and mergeFlap returns true so
// the caller deletes its opposite vertex.
//
// TODO: pinch deletion is only known to be right for manifold neighborhoods;
// define the expected result for open and non-manifold input.
func (m *Mesh) mergeFlap(ef, f, ff, efOther int) (pinched bool) {
	if efOther == NoIndex && ff == NoIndex {
		m.edel[ef] = true
		return true
	}
	fl := &m.e2f[ef]
	if fl[0] == f {
		fl[0] = ff
	} else {
		fl[1] = ff
	}
	if fl[0] == NoIndex {
		fl[0], fl[1] = fl[1], fl[0]
	}
	if ff == NoIndex {
		m.bedge[ef] = true
	}
	return false
}
