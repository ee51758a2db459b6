package qslim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Guard identifies the legality test that rejected a collapse.
type Guard int

const (
	// GuardNone means every test passed.
	GuardNone Guard = iota
	// GuardBoundary rejects interior edges joining two boundary vertices.
	GuardBoundary
	// GuardSharedNeighbors rejects collapses violating the link condition.
	GuardSharedNeighbors
	// GuardNormalFlip rejects collapses that flip or degenerate a face.
	GuardNormalFlip
	numGuards
)

func (g Guard) String() string {
	switch g {
	case GuardNone:
		return "none"
	case GuardBoundary:
		return "boundary"
	case GuardSharedNeighbors:
		return "shared neighbors"
	case GuardNormalFlip:
		return "normal flip"
	}
	return "unknown guard"
}

// FaceUpdate holds the normal and area a face takes after a collapse.
type FaceUpdate struct {
	Face   int
	Normal r3.Vec
	Area   float64
}

// CanCollapse runs the legality tests for collapsing edge e to position x,
// cheapest first. tol is the minimum cosine allowed between the old and new
// normal of every face moved by the collapse. It returns the face updates the
// collapse implies, or the guard that rejected it. The mesh is not modified.
func (m *Mesh) CanCollapse(e int, x r3.Vec, tol float64) ([]FaceUpdate, Guard) {
	return m.canCollapse(nil, e, x, tol)
}

func (m *Mesh) canCollapse(dst []FaceUpdate, e int, x r3.Vec, tol float64) ([]FaceUpdate, Guard) {
	if !m.canCollapseBoundary(e) {
		return dst, GuardBoundary
	}
	if !m.canCollapseSharedNeighbors(e) {
		return dst, GuardSharedNeighbors
	}
	dst, ok := m.checkNormals(dst, e, x, tol)
	if !ok {
		return dst, GuardNormalFlip
	}
	return dst, GuardNone
}

// canCollapseBoundary rejects interior edges whose endpoints are both on the
// boundary, which would pinch two boundary curves together.
func (m *Mesh) canCollapseBoundary(e int) bool {
	ev := m.e2v[e]
	return m.bedge[e] || !(m.bvert[ev[0]] && m.bvert[ev[1]])
}

// countSharedNeighbors counts the live vertices adjacent to both endpoints of e.
func (m *Mesh) countSharedNeighbors(e int) int {
	v0, v1 := m.e2v[e][0], m.e2v[e][1]
	shared := 0
	for _, v := range m.v2v[v0] {
		if m.vdel[v] || v == v1 {
			continue
		}
		for _, vv := range m.v2v[v1] {
			if vv == v && !m.vdel[vv] {
				shared++
			}
		}
	}
	return shared
}

// canCollapseSharedNeighbors approximates the link condition: an interior edge
// may only share its two flap vertices, a boundary edge only its single one.
func (m *Mesh) canCollapseSharedNeighbors(e int) bool {
	shared := m.countSharedNeighbors(e)
	if m.bedge[e] {
		return shared < 2
	}
	return shared < 3
}

// checkNormals recomputes the normal of every live face around the edge,
// except its flaps, with x in place of the endpoint. It fails if a face
// degenerates or if its normal turns by more than acos(tol).
func (m *Mesh) checkNormals(dst []FaceUpdate, e int, x r3.Vec, tol float64) ([]FaceUpdate, bool) {
	ev, fl := m.e2v[e], m.e2f[e]
	for _, v := range ev {
		for _, f := range m.v2f[v] {
			if f == fl[0] || f == fl[1] || m.fdel[f] {
				continue
			}
			var p [3]r3.Vec
			for i, vv := range m.F2V[f] {
				if vv == v {
					p[i] = x
				} else {
					p[i] = m.V[vv]
				}
			}
			n, area := triangleNormal(p[0], p[1], p[2])
			if area == 0 || m.fa[f] == 0 {
				return dst, false
			}
			if r3.Dot(n, m.fn[f]) < tol {
				return dst, false
			}
			dst = append(dst, FaceUpdate{Face: f, Normal: n, Area: area})
		}
	}
	return dst, true
}

// applyFaceUpdates stores the normals and areas computed by checkNormals.
func (m *Mesh) applyFaceUpdates(updates []FaceUpdate) {
	for _, u := range updates {
		m.fn[u.Face] = u.Normal
		m.fa[u.Face] = u.Area
	}
}
