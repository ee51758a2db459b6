package qslim

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by the errors returned from Validate.
var ErrInvariant = errors.New("broken mesh invariant")

// Validate checks the connectivity tables of a mesh with topology against the
// invariants maintained by BuildTopology and CollapseEdge and returns an error
// describing the first violation found.
func (m *Mesh) Validate() error {
	if !m.HasTopology() {
		return ErrNoTopology
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvariant)
	}
	for f, tri := range m.F2V {
		if m.fdel[f] {
			continue
		}
		for i, v := range tri {
			if m.vdel[v] {
				return fail("face %d references deleted vertex %d", f, v)
			}
			if v == tri[(i+1)%3] {
				return fail("face %d repeats vertex %d", f, v)
			}
			if !containsSorted(m.v2f[v], f) {
				return fail("face %d missing from incident faces of vertex %d", f, v)
			}
		}
	}
	for v := range m.V {
		if m.vdel[v] {
			continue
		}
		for i, f := range m.v2f[v] {
			if i > 0 && m.v2f[v][i-1] >= f {
				return fail("incident faces of vertex %d not sorted", v)
			}
			if !m.fdel[f] && m.F2V[f][0] != v && m.F2V[f][1] != v && m.F2V[f][2] != v {
				return fail("vertex %d lists face %d which does not reference it", v, f)
			}
		}
		for _, vv := range m.v2v[v] {
			if vv == v {
				return fail("vertex %d lists itself as neighbor", v)
			}
		}
	}
	for e, ev := range m.e2v {
		if m.edel[e] {
			continue
		}
		if ev[0] == ev[1] || m.vdel[ev[0]] || m.vdel[ev[1]] {
			return fail("edge %d has invalid vertices %v", e, ev)
		}
		fl := m.e2f[e]
		if fl[0] == NoIndex || m.fdel[fl[0]] {
			return fail("edge %d has no live first flap %v", e, fl)
		}
		if (fl[1] == NoIndex) != m.bedge[e] {
			return fail("edge %d boundary mark disagrees with flaps %v", e, fl)
		}
		if fl[1] != NoIndex && (fl[1] == fl[0] || m.fdel[fl[1]]) {
			return fail("edge %d has invalid second flap %v", e, fl)
		}
		for _, f := range fl {
			if f == NoIndex {
				continue
			}
			tri := m.F2V[f]
			for _, v := range ev {
				if tri[0] != v && tri[1] != v && tri[2] != v {
					return fail("flap %d of edge %d does not contain vertex %d", f, e, v)
				}
			}
		}
		if m.bedge[e] && (!m.bvert[ev[0]] || !m.bvert[ev[1]]) {
			return fail("boundary edge %d has interior vertex", e)
		}
	}
	return nil
}

func containsSorted(s []int, x int) bool {
	for _, v := range s {
		if v == x {
			return true
		}
		if v > x {
			return false
		}
	}
	return false
}
