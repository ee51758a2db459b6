package d3

import "gonum.org/v1/gonum/spatial/r3"

// Triangle is a triangle given by its counter-clockwise vertices.
type Triangle [3]r3.Vec

// Normal returns the unit normal of t, or the zero vector if t is degenerate.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{}
}

// Area returns the area of t.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0])))
}

// Centroid returns the average of the vertices of t.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3, r3.Add(t[0], r3.Add(t[1], t[2])))
}
