package space

import (
	"math"
	"math/rand"
	"sync"
)

// Manhattan2D is ℓ1 (taxicab) distance on the real plane. Interpolation
// follows the convention fixed by SPEC_FULL.md/spec.md §4.A: traverse the
// X axis fully before the Y axis.
type Manhattan2D struct {
	Velocity float64
	MaxX     float64
	MaxY     float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewManhattan2D(velocity, maxX, maxY float64, seed int64) *Manhattan2D {
	return &Manhattan2D{
		Velocity: velocity,
		MaxX:     maxX,
		MaxY:     maxY,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Manhattan2D) D(u, v Point2D) float64 {
	return math.Abs(v.X-u.X) + math.Abs(v.Y-u.Y)
}

func (s *Manhattan2D) T(u, v Point2D) float64 {
	return s.D(u, v) / s.Velocity
}

func (s *Manhattan2D) InterpDist(u, v Point2D, distToDest float64) (Point2D, float64) {
	total := s.D(u, v)
	if total == 0 || distToDest >= total {
		return u, 0
	}
	traveled := total - distToDest
	dx := v.X - u.X
	dy := v.Y - u.Y
	if traveled <= math.Abs(dx) {
		return Point2D{X: u.X + math.Copysign(traveled, dx), Y: u.Y}, 0
	}
	remaining := traveled - math.Abs(dx)
	return Point2D{X: v.X, Y: u.Y + math.Copysign(remaining, dy)}, 0
}

func (s *Manhattan2D) InterpTime(u, v Point2D, timeToDest float64) (Point2D, float64) {
	return s.InterpDist(u, v, timeToDest*s.Velocity)
}

func (s *Manhattan2D) RandomPoint() Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Point2D{X: s.rng.Float64() * s.MaxX, Y: s.rng.Float64() * s.MaxY}
}
