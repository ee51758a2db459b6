// Package meshio reads and writes triangle meshes in OBJ, binary STL and
// legacy VTK formats.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucmobz/qslim"
)

var (
	// ErrFormat is wrapped by errors reporting malformed input.
	ErrFormat = errors.New("malformed mesh data")
	// ErrExtension is returned by Load and Save for unknown file extensions.
	ErrExtension = errors.New("unsupported mesh file extension")
)

// Load reads the mesh at path, choosing the format from the extension:
// .obj or .stl. STL vertices are welded with FromTriangles using an inferred
// tolerance and stored normal mismatches are ignored.
func Load(path string) (*qslim.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".obj" && ext != ".stl" {
		return nil, fmt.Errorf("%s: %w", path, ErrExtension)
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if ext == ".obj" {
		return ReadOBJ(fp)
	}
	tris, err := ReadSTL(fp)
	if err != nil && !errors.Is(err, ErrNormalMismatch) {
		return nil, err
	}
	return FromTriangles(tris, 0)
}

// Save writes the live faces of m to path, choosing the format from the
// extension: .obj, .stl or .vtk.
func Save(path string, m *qslim.Mesh) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".obj" && ext != ".stl" && ext != ".vtk" {
		return fmt.Errorf("%s: %w", path, ErrExtension)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case ".obj":
		err = WriteOBJ(fp, m)
	case ".stl":
		_, err = WriteSTL(fp, ToTriangles(m))
	case ".vtk":
		err = WriteVTK(fp, m, filepath.Base(path), nil)
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}
