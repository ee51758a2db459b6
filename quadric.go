package qslim

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quadric represents the sum of squared distances to a set of planes as
//
//	cost(x) = xᵗ·A·x + 2·bᵗ·x + c
//
// where A is symmetric. Quadrics are additive: the sum of two quadrics
// evaluates to the sum of their costs.
type Quadric struct {
	// A holds the upper triangle of the symmetric matrix in the order
	// xx, xy, xz, yy, yz, zz.
	A [6]float64
	B r3.Vec
	C float64
}

// PlaneQuadric returns the quadric of the squared distance to the plane with
// unit normal n passing through x.
func PlaneQuadric(n, x r3.Vec) Quadric {
	d := -r3.Dot(n, x)
	return Quadric{
		A: [6]float64{
			n.X * n.X, n.X * n.Y, n.X * n.Z,
			n.Y * n.Y, n.Y * n.Z,
			n.Z * n.Z,
		},
		B: r3.Scale(d, n),
		C: d * d,
	}
}

// PointQuadric returns w times the squared distance to point x. It is added
// to vertex quadrics to keep A invertible on flat neighborhoods.
func PointQuadric(w float64, x r3.Vec) Quadric {
	return Quadric{
		A: [6]float64{w, 0, 0, w, 0, w},
		B: r3.Scale(-w, x),
		C: w * r3.Norm2(x),
	}
}

// Add returns the pointwise sum of q and p.
func (q Quadric) Add(p Quadric) Quadric {
	for i := range q.A {
		q.A[i] += p.A[i]
	}
	q.B = r3.Add(q.B, p.B)
	q.C += p.C
	return q
}

// Scale returns q with every coefficient multiplied by f.
func (q Quadric) Scale(f float64) Quadric {
	for i := range q.A {
		q.A[i] *= f
	}
	q.B = r3.Scale(f, q.B)
	q.C *= f
	return q
}

// mulA returns A·x.
func (q Quadric) mulA(x r3.Vec) r3.Vec {
	a := &q.A
	return r3.Vec{
		X: a[0]*x.X + a[1]*x.Y + a[2]*x.Z,
		Y: a[1]*x.X + a[3]*x.Y + a[4]*x.Z,
		Z: a[2]*x.X + a[4]*x.Y + a[5]*x.Z,
	}
}

// Eval returns the cost of q at x.
func (q Quadric) Eval(x r3.Vec) float64 {
	return r3.Dot(r3.Add(q.mulA(x), r3.Scale(2, q.B)), x) + q.C
}

// Optimal returns the minimizer of q, the solution of A·x = -b. It reports
// false when A is close to singular or when the solve is ill-conditioned, in
// which case callers fall back to another position such as an edge midpoint.
func (q Quadric) Optimal() (r3.Vec, bool) {
	a := mat.NewSymDense(3, []float64{
		q.A[0], q.A[1], q.A[2],
		q.A[1], q.A[3], q.A[4],
		q.A[2], q.A[4], q.A[5],
	})
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return r3.Vec{}, false
	}
	if chol.Det() < float32Eps {
		return r3.Vec{}, false
	}
	var sol mat.VecDense
	err := chol.SolveVecTo(&sol, mat.NewVecDense(3, []float64{-q.B.X, -q.B.Y, -q.B.Z}))
	if err != nil {
		return r3.Vec{}, false
	}
	x := r3.Vec{X: sol.AtVec(0), Y: sol.AtVec(1), Z: sol.AtVec(2)}
	// Relative residual of the solve.
	bnorm := r3.Norm(q.B)
	if bnorm > 0 && r3.Norm(r3.Add(q.mulA(x), q.B))/bnorm > float32Eps {
		return r3.Vec{}, false
	}
	return x, true
}

// faceQuadrics returns the plane quadric of every live face with non-zero area.
func (m *Mesh) faceQuadrics(workers int) []Quadric {
	fq := make([]Quadric, len(m.F2V))
	parallelFaces(m, workers, func(f int) {
		if m.fa[f] > float64Eps {
			fq[f] = PlaneQuadric(m.fn[f], m.V[m.F2V[f][0]])
		}
	})
	return fq
}

// boundaryQuadric returns the quadric of the plane containing boundary edge e
// and orthogonal to its flap, scaled by weight. It reports false when the
// plane is undefined.
func (m *Mesh) boundaryQuadric(e int, weight float64) (Quadric, bool) {
	ev := m.e2v[e]
	x0 := m.V[ev[0]]
	n := r3.Cross(r3.Sub(m.V[ev[1]], x0), m.fn[m.e2f[e][0]])
	norm := r3.Norm(n)
	if norm <= float32Eps {
		return Quadric{}, false
	}
	return PlaneQuadric(r3.Scale(1/norm, n), x0).Scale(weight), true
}

// VertexQuadrics returns the error quadric of every vertex: the planes of its
// incident faces, a point quadric weighted by cfg.Regularization and, for
// boundary vertices, the planes through their boundary edges orthogonal to the
// flap weighted by cfg.BoundaryWeight. Deleted vertices get a zero quadric.
func (m *Mesh) VertexQuadrics(cfg Config) []Quadric {
	cfg = cfg.withDefaults()
	fq := m.faceQuadrics(cfg.Workers)
	vq := make([]Quadric, len(m.V))
	parallelVertices(m, cfg.Workers, func(v int) {
		q := PointQuadric(cfg.Regularization, m.V[v])
		for _, f := range m.v2f[v] {
			if !m.fdel[f] {
				q = q.Add(fq[f])
			}
		}
		for _, e := range m.v2e[v] {
			if m.edel[e] || !m.bedge[e] {
				continue
			}
			if bq, ok := m.boundaryQuadric(e, cfg.BoundaryWeight); ok {
				q = q.Add(bq)
			}
		}
		vq[v] = q
	})
	return vq
}
