package meshio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/internal/d3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNormalMismatch is returned by ReadSTL alongside the triangles read when
// stored normals disagree with the vertex winding. The model may still be fine.
var ErrNormalMismatch = errors.New("stored STL normal does not match vertex winding")

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, model []ms3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}

	nt := int64(len(model)) // int64 cast so that next line works correctly on 32bit machines.
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	header := stlHeader{
		Count: uint32(nt),
	}

	var buf [84]byte
	header.put(buf[:])
	n, err := w.Write(buf[:84])
	if err != nil {
		return n, err
	} else if n != len(buf) {
		return n, io.ErrShortWrite
	}
	var d stlTriangle
	const triangleSize = 50
	for _, triangle := range model {
		norm := ms3.Unit(triangle.Normal())
		d.Normal = [3]float32{norm.X, norm.Y, norm.Z}
		d.Vertex1 = [3]float32{triangle[0].X, triangle[0].Y, triangle[0].Z}
		d.Vertex2 = [3]float32{triangle[1].X, triangle[1].Y, triangle[1].Z}
		d.Vertex3 = [3]float32{triangle[2].X, triangle[2].Y, triangle[2].Z}
		d.put(buf[:])
		ngot, err := w.Write(buf[:triangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != triangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadSTL reads a binary STL file. Triangles with NaN or infinite
// coordinates and degenerate triangles fail the read. Normal mismatches are
// reported with ErrNormalMismatch after reading every triangle.
func ReadSTL(r io.Reader) (output []ms3.Triangle, readErr error) {
	var hbuf [84]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("encountered EOF while reading STL header: %w", ErrFormat)
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	var header stlHeader
	header.get(hbuf[:])
	if header.Count == 0 {
		return nil, fmt.Errorf("STL header indicates 0 triangles present: %w", ErrFormat)
	}
	var (
		buf            [50]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]ms3.Triangle, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
		}
		output = append(output, d.Triangle())
	}
	if normMismatches > 0 {
		// This may be valid output, so we return the triangles.
		return output, fmt.Errorf("%d/%d triangles: %w", normMismatches, header.Count, ErrNormalMismatch)
	}
	return output, nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func (h stlHeader) put(b []byte) {
	_ = b[83] //early bounds check
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *stlHeader) get(b []byte) {
	_ = b[83] //early bounds check
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to marshal stlTriangle")
	}

	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0) // Zero out attributes.
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return fmt.Errorf("inf/NaN STL triangle normal: %w", ErrFormat)
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return fmt.Errorf("inf/NaN STL triangle vertex: %w", ErrFormat)
	}
	if t.Triangle().IsDegenerate(epsilon) {
		return fmt.Errorf("triangle is degenerate: %w", ErrFormat)
	}
	gotNormal := vecFromArray(t.Normal)
	if gotNormal == (ms3.Vec{}) {
		// Writers may leave the normal for the reader to compute.
		return nil
	}
	calcNormal := t.normalFromVertices()
	if !ms3.EqualElem(calcNormal, gotNormal, normTol) && !ms3.EqualElem(ms3.Scale(-1, calcNormal), gotNormal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func vecFromArray(f [3]float32) ms3.Vec {
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}
}

func (t stlTriangle) normalFromVertices() ms3.Vec {
	v1 := ms3.Scale(10, vecFromArray(t.Vertex1))
	v2 := ms3.Scale(10, vecFromArray(t.Vertex2))
	v3 := ms3.Scale(10, vecFromArray(t.Vertex3))
	return ms3.Unit(ms3.Cross(ms3.Sub(v2, v1), ms3.Sub(v3, v1)))
}

func (t stlTriangle) Triangle() ms3.Triangle {
	return ms3.Triangle{vecFromArray(t.Vertex1), vecFromArray(t.Vertex2), vecFromArray(t.Vertex3)}
}

func r3FromMS3(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func ms3FromR3(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// FromTriangles builds an indexed mesh from a triangle soup, sharing vertices
// that fall in the same cell of a grid of spacing tol. A zero tol is replaced
// by 1/256 of the shortest triangle side.
func FromTriangles(model []ms3.Triangle, tol float64) (*qslim.Mesh, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	minDist2 := math.MaxFloat64
	maxDist2 := -math.MaxFloat64
	for _, tri := range model {
		for j := range tri {
			vert := r3FromMS3(tri[j])
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(r3FromMS3(tri[(j+1)%3]), vert))
			minDist2 = math.Min(minDist2, side2)
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return nil, fmt.Errorf("vertex tolerance is too large to generate appropiate mesh, suggested tolerance: %g", suggested)
	}
	if tol == 0 {
		tol = suggested
	}
	if tol <= 0 {
		return nil, errors.New("model has a zero length side, cannot infer vertex tolerance")
	}
	div := d3.Max(bb.Size()) / tol
	if div > math.MaxInt64/2 {
		return nil, errors.New("tolerance too small. overflowed int64")
	}
	// vertex index cache
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	m := &qslim.Mesh{F2V: make([][3]int, len(model))}
	for i, tri := range model {
		for j := range tri {
			vert := r3FromMS3(tri[j])
			// Scale vert to be integer in resolution-space.
			v := r3.Scale(ri, vert)
			vi := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			idx, ok := cache[vi]
			if !ok {
				idx = len(m.V)
				cache[vi] = idx
				m.V = append(m.V, vert)
			}
			m.F2V[i][j] = idx
		}
	}
	return m, nil
}

// ToTriangles returns the live faces of m as float32 triangles.
func ToTriangles(m *qslim.Mesh) []ms3.Triangle {
	tris := m.Triangles()
	out := make([]ms3.Triangle, len(tris))
	for i, t := range tris {
		out[i] = ms3.Triangle{ms3FromR3(t[0]), ms3FromR3(t[1]), ms3FromR3(t[2])}
	}
	return out
}
