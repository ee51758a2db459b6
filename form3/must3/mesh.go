package must3

import (
	"math"

	"github.com/lucmobz/qslim"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tetrahedron returns a regular tetrahedron inscribed in the cube [-1,1]³.
func Tetrahedron() *qslim.Mesh {
	return qslim.NewMesh(
		[]r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}},
		[][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}},
	)
}

// Octahedron returns the unit octahedron with vertices on the axes in the
// order +x, -x, +y, -y, +z, -z. The four faces around +z come first.
func Octahedron() *qslim.Mesh {
	return qslim.NewMesh(
		[]r3.Vec{
			{X: 1}, {X: -1},
			{Y: 1}, {Y: -1},
			{Z: 1}, {Z: -1},
		},
		[][3]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		},
	)
}

// Cube returns a box of the given size centered at the origin, two triangles
// per side. Vertex i sits at the corner selected by bits x=i&1, y=i&2, z=i&4.
func Cube(size r3.Vec) *qslim.Mesh {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic("size <= 0")
	}
	v := make([]r3.Vec, 8)
	for i := range v {
		v[i] = r3.Vec{
			X: (float64(i&1) - 0.5) * size.X,
			Y: (float64(i>>1&1) - 0.5) * size.Y,
			Z: (float64(i>>2&1) - 0.5) * size.Z,
		}
	}
	return qslim.NewMesh(v, [][3]int{
		{0, 2, 3}, {0, 3, 1}, // -z
		{4, 5, 7}, {4, 7, 6}, // +z
		{0, 1, 5}, {0, 5, 4}, // -y
		{2, 6, 7}, {2, 7, 3}, // +y
		{0, 4, 6}, {0, 6, 2}, // -x
		{1, 3, 7}, {1, 7, 5}, // +x
	})
}

// Grid returns a flat open mesh of nx by ny square cells, two triangles each,
// spanning [0,size.X]×[0,size.Y] in the z=0 plane with normals along +z.
// Vertex (i,j) has index j*(nx+1)+i.
func Grid(nx, ny int, size r2.Vec) *qslim.Mesh {
	if nx < 1 || ny < 1 {
		panic("grid cells < 1")
	}
	if size.X <= 0 || size.Y <= 0 {
		panic("size <= 0")
	}
	w := nx + 1
	v := make([]r3.Vec, 0, w*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			v = append(v, r3.Vec{X: size.X * float64(i) / float64(nx), Y: size.Y * float64(j) / float64(ny)})
		}
	}
	f := make([][3]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*w + i
			b, c := a+1, a+w
			d := c + 1
			f = append(f, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	return qslim.NewMesh(v, f)
}

// Icosphere returns a sphere of the given radius built by splitting each
// face of an icosahedron in four subdivisions times and projecting the new
// vertices onto the sphere. It has 20·4^subdivisions faces.
func Icosphere(radius float64, subdivisions int) *qslim.Mesh {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if subdivisions < 0 {
		panic("subdivisions < 0")
	}
	t := (1 + math.Sqrt(5)) / 2
	v := []r3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range v {
		v[i] = r3.Unit(v[i])
	}
	f := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for s := 0; s < subdivisions; s++ {
		mids := make(map[[2]int]int, 3*len(f)/2)
		mid := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := mids[key]; ok {
				return i
			}
			v = append(v, r3.Unit(r3.Scale(0.5, r3.Add(v[a], v[b]))))
			mids[key] = len(v) - 1
			return len(v) - 1
		}
		next := make([][3]int, 0, 4*len(f))
		for _, tri := range f {
			ab := mid(tri[0], tri[1])
			bc := mid(tri[1], tri[2])
			ca := mid(tri[2], tri[0])
			next = append(next,
				[3]int{tri[0], ab, ca},
				[3]int{tri[1], bc, ab},
				[3]int{tri[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		f = next
	}
	for i := range v {
		v[i] = r3.Scale(radius, v[i])
	}
	return qslim.NewMesh(v, f)
}
