package form3

import (
	"fmt"
	"runtime"

	"github.com/lucmobz/qslim"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMsg returns an error with a message function name and line number.
func ErrMsg(msg string) error {
	pc, _, line, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("?: %s", msg)
	}
	fn := runtime.FuncForPC(pc)
	return fmt.Errorf("%s line %d: %s", fn.Name(), line, msg)
}

// Named returns the shape registered under name, as accepted by the -shape
// flag of the qslim command: tetrahedron, octahedron, cube, grid or sphere.
// detail sets the grid cell count or the sphere subdivisions.
func Named(name string, detail int) (*qslim.Mesh, error) {
	switch name {
	case "tetrahedron":
		return Tetrahedron(), nil
	case "octahedron":
		return Octahedron(), nil
	case "cube":
		return Cube(r3.Vec{X: 1, Y: 1, Z: 1})
	case "grid":
		return Grid(detail, detail, r2.Vec{X: 1, Y: 1})
	case "sphere":
		return Icosphere(1, detail)
	}
	return nil, ErrMsg("unknown shape " + name)
}
