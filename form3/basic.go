package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Tetrahedron returns a regular tetrahedron, the smallest closed mesh.
func Tetrahedron() *qslim.Mesh { return must3.Tetrahedron() }

// Octahedron returns the unit octahedron: 6 vertices, 8 faces, 12 edges.
func Octahedron() *qslim.Mesh { return must3.Octahedron() }

// Cube returns a box mesh of the given size centered at the origin.
func Cube(size r3.Vec) (m *qslim.Mesh, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Cube(size), err
}

// Grid returns a flat open mesh of nx by ny cells covering size.
func Grid(nx, ny int, size r2.Vec) (m *qslim.Mesh, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Grid(nx, ny, size), err
}

// Icosphere returns a subdivided icosahedron projected on a sphere.
func Icosphere(radius float64, subdivisions int) (m *qslim.Mesh, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Icosphere(radius, subdivisions), err
}
