package space

import (
	"math"
	"math/rand"
	"sync"
)

// SquareGrid is an integer lattice with edge length G and uniform
// velocity V. Interpolation traverses the X axis entirely before the Y
// axis, per SPEC_FULL.md/spec.md §4.A.
type SquareGrid struct {
	G    float64
	V    float64
	MaxX int
	MaxY int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSquareGrid(edgeLength, velocity float64, maxX, maxY int, seed int64) *SquareGrid {
	return &SquareGrid{
		G:    edgeLength,
		V:    velocity,
		MaxX: maxX,
		MaxY: maxY,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (s *SquareGrid) D(u, v GridPoint) float64 {
	return s.G * (math.Abs(float64(v.X-u.X)) + math.Abs(float64(v.Y-u.Y)))
}

func (s *SquareGrid) T(u, v GridPoint) float64 {
	return s.D(u, v) / s.V
}

// path enumerates the X-then-Y lattice walk from u to v inclusive.
func (s *SquareGrid) path(u, v GridPoint) []GridPoint {
	dx, dy := v.X-u.X, v.Y-u.Y
	stepX, stepY := sign(dx), sign(dy)
	nodes := make([]GridPoint, 0, abs(dx)+abs(dy)+1)
	cur := u
	nodes = append(nodes, cur)
	for cur.X != v.X {
		cur.X += stepX
		nodes = append(nodes, cur)
	}
	for cur.Y != v.Y {
		cur.Y += stepY
		nodes = append(nodes, cur)
	}
	return nodes
}

func (s *SquareGrid) InterpDist(u, v GridPoint, distToDest float64) (GridPoint, float64) {
	total := s.D(u, v)
	if total == 0 || distToDest >= total {
		return u, 0
	}
	traveled := total - distToDest
	nodes := s.path(u, v)
	stepsTraveled := traveled / s.G
	nodeIdx := int(math.Floor(stepsTraveled))

	// Exactly on a lattice node: that node is current, residual 0.
	if math.Abs(stepsTraveled-float64(nodeIdx)) < 1e-9 {
		if nodeIdx >= len(nodes) {
			return v, 0
		}
		return nodes[nodeIdx], 0
	}
	if nodeIdx >= len(nodes)-1 {
		return v, 0
	}
	next := nodes[nodeIdx+1]
	residual := s.G*float64(nodeIdx+1) - traveled
	return next, residual
}

func (s *SquareGrid) InterpTime(u, v GridPoint, timeToDest float64) (GridPoint, float64) {
	loc, residualDist := s.InterpDist(u, v, timeToDest*s.V)
	return loc, residualDist / s.V
}

func (s *SquareGrid) RandomPoint() GridPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GridPoint{X: s.rng.Intn(s.MaxX + 1), Y: s.rng.Intn(s.MaxY + 1)}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
