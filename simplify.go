package qslim

import (
	"container/heap"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/lucmobz/qslim/internal/parallel"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoTopology is returned when simplification starts before BuildTopology.
var ErrNoTopology = errors.New("mesh has no topology, call BuildTopology")

// MinFaces is the smallest face count a simplification may target.
const MinFaces = 4

// Config holds simplification parameters. Zero fields take the value of the
// same field in DefaultConfig, except TargetFaces which is raised to MinFaces.
type Config struct {
	// TargetFaces is the live face count at which simplification stops.
	TargetFaces int
	// Workers is the number of goroutines used to compute quadrics and seed
	// the queue. The collapse loop always runs on the calling goroutine.
	Workers int
	// NormalTolerance is the minimum cosine between the normals of a face
	// before and after a collapse. 0.5 allows turns up to 60 degrees. Use a
	// negative value to allow any turn that does not degenerate a face.
	NormalTolerance float64
	// BoundaryWeight scales the quadrics of the planes through boundary edges.
	BoundaryWeight float64
	// Regularization weights the point quadric added to every vertex.
	Regularization float64
	// Logger receives fallback counts and the final summary. Nil is silent.
	Logger *log.Logger
}

// DefaultConfig returns the default simplification parameters.
func DefaultConfig() Config {
	return Config{
		TargetFaces:     MinFaces,
		Workers:         1,
		NormalTolerance: 0.5,
		BoundaryWeight:  1e2,
		Regularization:  1e-10,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.TargetFaces < MinFaces {
		cfg.TargetFaces = MinFaces
	}
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.NormalTolerance == 0 {
		cfg.NormalTolerance = def.NormalTolerance
	}
	if cfg.BoundaryWeight == 0 {
		cfg.BoundaryWeight = def.BoundaryWeight
	}
	if cfg.Regularization == 0 {
		cfg.Regularization = def.Regularization
	}
	return cfg
}

// Result summarizes a simplification run.
type Result struct {
	// Faces is the live face count when the run stopped.
	Faces int
	// Target is the face count requested after flooring.
	Target int
	// Collapses counts committed collapses.
	Collapses int
	// Stale counts queue entries discarded because their edge was deleted or
	// re-queued after they were pushed.
	Stale int
	// Rejected counts candidates discarded by each guard, indexed by Guard.
	Rejected [numGuards]int
	// Fallbacks counts candidates placed at the edge midpoint because the
	// quadric minimizer was ill-conditioned.
	Fallbacks int
	// Exhausted is set when the queue emptied before reaching Target.
	Exhausted bool
}

func (r Result) String() string {
	return fmt.Sprintf("reached %d faces, requested %d", r.Faces, r.Target)
}

// Simplifier greedily collapses the cheapest legal edge of a mesh until the
// target face count is reached. A Simplifier owns its mesh until it is done:
// the mesh must not be read or modified concurrently with Step or Run.
type Simplifier struct {
	m       *Mesh
	cfg     Config
	q       []Quadric
	h       edgeHeap
	stamp   []int
	faces   int
	res     Result
	updates []FaceUpdate
}

// NewSimplifier computes vertex quadrics for m and queues one collapse
// candidate per live edge. m must have topology built.
func NewSimplifier(m *Mesh, cfg Config) (*Simplifier, error) {
	if !m.HasTopology() {
		return nil, ErrNoTopology
	}
	cfg = cfg.withDefaults()
	s := &Simplifier{
		m:     m,
		cfg:   cfg,
		q:     m.VertexQuadrics(cfg),
		stamp: make([]int, m.NumEdges()),
		faces: m.LiveFaces(),
	}
	s.res.Target = cfg.TargetFaces

	s.h = make(edgeHeap, m.NumEdges())
	queued := make([]bool, m.NumEdges())
	fallbacks := make([]int, cfg.Workers)
	parallel.Task(cfg.Workers, m.NumEdges(), func(shard, start, end int) {
		for e := start; e < end; e++ {
			if m.edel[e] {
				continue
			}
			c, fallback := s.candidate(e)
			if fallback {
				fallbacks[shard]++
			}
			s.h[e] = c
			queued[e] = true
		}
	})
	n := 0
	for e, ok := range queued {
		if ok {
			s.h[n] = s.h[e]
			n++
		}
	}
	s.h = s.h[:n]
	for _, f := range fallbacks {
		s.res.Fallbacks += f
	}
	heap.Init(&s.h)
	return s, nil
}

// candidate computes the merge position and cost of collapsing edge e from
// the current endpoint quadrics. The position falls back to the edge midpoint
// when the quadric has no reliable minimizer.
func (s *Simplifier) candidate(e int) (c candidate, fallback bool) {
	ev := s.m.e2v[e]
	q := s.q[ev[0]].Add(s.q[ev[1]])
	x, ok := q.Optimal()
	if !ok {
		x = r3.Scale(0.5, r3.Add(s.m.V[ev[0]], s.m.V[ev[1]]))
	}
	return candidate{
		cost:  math.Abs(q.Eval(x)),
		edge:  e,
		stamp: s.stamp[e],
		x:     x,
	}, !ok
}

// Faces returns the current live face count.
func (s *Simplifier) Faces() int { return s.faces }

// Quadric returns the accumulated quadric of vertex v.
func (s *Simplifier) Quadric(v int) Quadric { return s.q[v] }

// Done reports whether the target was reached or the queue is empty.
func (s *Simplifier) Done() bool { return s.faces <= s.cfg.TargetFaces || len(s.h) == 0 }

// Step pops the cheapest queued candidate and commits it if it is current and
// legal. collapsed reports whether the mesh changed, more whether further
// steps can make progress.
func (s *Simplifier) Step() (collapsed, more bool) {
	if s.Done() {
		return false, false
	}
	m := s.m
	c := heap.Pop(&s.h).(candidate)
	if m.edel[c.edge] || c.stamp < s.stamp[c.edge] {
		s.res.Stale++
		return false, !s.Done()
	}
	var g Guard
	s.updates, g = m.canCollapse(s.updates[:0], c.edge, c.x, s.cfg.NormalTolerance)
	if g != GuardNone {
		s.res.Rejected[g]++
		return false, !s.Done()
	}

	col := m.CollapseEdge(c.edge, c.x)
	m.applyFaceUpdates(s.updates)
	v0 := col.Survivor
	s.q[v0] = s.q[v0].Add(s.q[col.Removed])
	s.faces -= col.FacesRemoved
	s.res.Collapses++

	for _, e := range m.v2e[v0] {
		if m.edel[e] {
			continue
		}
		s.stamp[e]++
		next, fallback := s.candidate(e)
		if fallback {
			s.res.Fallbacks++
		}
		heap.Push(&s.h, next)
	}
	return true, !s.Done()
}

// Run steps until the target face count is reached or the queue is empty.
func (s *Simplifier) Run() Result {
	for {
		if _, more := s.Step(); !more {
			break
		}
	}
	res := s.Result()
	if l := s.cfg.Logger; l != nil {
		if res.Fallbacks > 0 {
			l.Printf("qslim: %d candidates fell back to the edge midpoint", res.Fallbacks)
		}
		l.Printf("qslim: %s after %d collapses (%d stale, %d boundary, %d shared neighbors, %d normal flip rejections)",
			res, res.Collapses, res.Stale, res.Rejected[GuardBoundary], res.Rejected[GuardSharedNeighbors], res.Rejected[GuardNormalFlip])
	}
	return res
}

// Result returns the statistics of the run so far.
func (s *Simplifier) Result() Result {
	res := s.res
	res.Faces = s.faces
	res.Exhausted = s.faces > s.cfg.TargetFaces && len(s.h) == 0
	return res
}

// Simplify reduces m to at most cfg.TargetFaces live faces, or as close as the
// guards allow. m must have topology built. Deleted elements remain in m until
// Compact is called.
func Simplify(m *Mesh, cfg Config) (Result, error) {
	s, err := NewSimplifier(m, cfg)
	if err != nil {
		return Result{}, err
	}
	return s.Run(), nil
}
