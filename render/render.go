// Package render draws the live faces of a mesh to a raster image with a
// software rasterizer. Faces are flat shaded so the result of a decimation is
// visible facet by facet.
package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/internal/d3"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and output of a render. The mesh is fit in a
// bi-unit cube centered at the origin before drawing.
type View struct {
	// what position (point) to look at
	Lookat r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Output size in pixels.
	Width, Height int
	// Supersample renders at a multiple of the output size and downsamples
	// with bilinear filtering for antialiasing. Values below 1 mean 1.
	Supersample int
	// Object and background colors as hex strings.
	Color, Background string
}

// DefaultView returns an isometric view at 40% of Full HD resolution.
func DefaultView() View {
	const FHDscaler = 0.4
	return View{
		Up:         r3.Vec{Z: 1},
		Eye:        d3.Elem(2.4),
		Near:       1,
		Far:        10,
		Width:      int(1920. * FHDscaler),
		Height:     int(1080. * FHDscaler),
		Color:      "#468966",
		Background: "#FFF8E3",
	}
}

var errNoFaces = errors.New("render: mesh has no live faces")

// Image renders m as seen from view.
func Image(m *qslim.Mesh, view View) (image.Image, error) {
	mesh := fauxglMesh(m)
	if mesh == nil {
		return nil, errNoFaces
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("render: image size must be positive")
	}
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = fauxglVec(view.Eye)
		center = fauxglVec(view.Lookat)
		up     = fauxglVec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
	)
	mesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// PNG renders m and saves the image to path.
func PNG(path string, m *qslim.Mesh, view View) error {
	img, err := Image(m, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

// fauxglMesh returns the live faces of m as a triangle mesh with face
// normals, or nil if m has no live faces.
func fauxglMesh(m *qslim.Mesh) *fauxgl.Mesh {
	tris := m.Triangles()
	if len(tris) == 0 {
		return nil
	}
	out := make([]*fauxgl.Triangle, len(tris))
	for i, t := range tris {
		out[i] = fauxgl.NewTriangleForPoints(fauxglVec(t[0]), fauxglVec(t[1]), fauxglVec(t[2]))
	}
	return fauxgl.NewTriangleMesh(out)
}

func fauxglVec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
