// Command qslim simplifies a triangle mesh by quadric edge collapse.
//
// Usage:
//
//	qslim -in bunny.obj -out bunny_small.obj -target 1000
//	qslim -shape sphere -detail 4 -out sphere.stl -target 200 -png sphere.png
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/lucmobz/qslim"
	"github.com/lucmobz/qslim/cleanup"
	"github.com/lucmobz/qslim/form3"
	"github.com/lucmobz/qslim/helpers/measure"
	"github.com/lucmobz/qslim/meshio"
	"github.com/lucmobz/qslim/render"
)

func main() {
	var (
		in        = flag.String("in", "", "input mesh (.obj or .stl)")
		shape     = flag.String("shape", "", "generate input instead of reading it: tetrahedron, octahedron, cube, grid or sphere")
		detail    = flag.Int("detail", 3, "grid cells per side or sphere subdivisions for -shape")
		out       = flag.String("out", "", "output mesh (.obj, .stl or .vtk)")
		target    = flag.Int("target", qslim.MinFaces, "target face count")
		ratio     = flag.Float64("ratio", 0, "target face count as a fraction of the input, overrides -target when in (0,1)")
		component = flag.Int("component", -1, "connected component to simplify, -1 picks the largest")
		workers   = flag.Int("workers", runtime.NumCPU(), "goroutines used to build topology and quadrics")
		angle     = flag.Float64("angle", 60, "largest face normal turn in degrees allowed by a collapse")
		stats     = flag.Bool("stats", false, "print mesh statistics and deviation from the input")
		pngOut    = flag.String("png", "", "render the simplified mesh to a PNG file")
	)
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("qslim: ")
	warn := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	m, err := load(*in, *shape, *detail)
	if err != nil {
		log.Fatal(red(err))
	}
	m, report := cleanup.Clean(m)
	log.Printf("loaded %d vertices, %d faces", m.NumVertices(), m.NumFaces())
	if report != (cleanup.Report{Oriented: true, EdgeManifold: true}) {
		log.Println(warn("cleanup: " + report.String()))
	}

	comps := cleanup.Components(m)
	if len(comps) == 0 {
		log.Fatal(red("mesh has no faces"))
	}
	pick := *component
	if pick < 0 {
		pick = cleanup.Largest(comps)
	} else if pick >= len(comps) {
		log.Fatal(red(fmt.Sprintf("component %d requested, mesh has %d", pick, len(comps))))
	}
	if len(comps) > 1 {
		log.Printf("mesh has %d components, simplifying component %d with %d faces", len(comps), pick, len(comps[pick]))
	}
	m = cleanup.Split(m, comps)[pick]
	original := append(m.V[:0:0], m.V...)

	tstart := time.Now()
	if err := m.BuildTopology(*workers); err != nil {
		log.Fatal(red(err))
	}
	cfg := qslim.DefaultConfig()
	cfg.TargetFaces = *target
	if *ratio > 0 && *ratio < 1 {
		cfg.TargetFaces = int(*ratio * float64(m.LiveFaces()))
	}
	cfg.Workers = *workers
	cfg.NormalTolerance = math.Cos(*angle * math.Pi / 180)
	if *angle >= 180 {
		cfg.NormalTolerance = -1
	}
	cfg.Logger = log.Default()
	res, err := qslim.Simplify(m, cfg)
	if err != nil {
		log.Fatal(red(err))
	}
	log.Printf("simplified in %s", time.Since(tstart).Round(time.Millisecond))
	for g := qslim.GuardBoundary; g <= qslim.GuardNormalFlip; g++ {
		if n := res.Rejected[g]; n > 0 {
			log.Printf("%d collapses rejected by %s guard", n, g)
		}
	}
	if res.Exhausted {
		log.Println(warn(fmt.Sprintf("no legal collapse left: %s", res)))
	}
	if err := m.Validate(); err != nil {
		log.Fatal(red(err))
	}

	if *pngOut != "" {
		if err := render.PNG(*pngOut, m, render.DefaultView()); err != nil {
			log.Fatal(red(err))
		}
	}
	m.Compact()
	if *stats {
		worst, mean := measure.Deviation(original, m)
		fmt.Println(measure.Summarize(m))
		fmt.Printf("deviation from input vertices: max %g, mean %g\n", worst, mean)
	}
	if *out != "" {
		if err := meshio.Save(*out, m); err != nil {
			log.Fatal(red(err))
		}
		log.Printf("wrote %s", *out)
	}
}

func load(path, shape string, detail int) (*qslim.Mesh, error) {
	switch {
	case path != "" && shape != "":
		return nil, fmt.Errorf("-in and -shape are exclusive")
	case path != "":
		return meshio.Load(path)
	case shape != "":
		return form3.Named(shape, detail)
	}
	flag.Usage()
	os.Exit(2)
	return nil, nil
}
