package space

import (
	"math"
	"math/rand"
	"sync"
)

// Euclidean2D is straight-line distance on the real plane, scaled to time
// by a constant velocity.
type Euclidean2D struct {
	Velocity float64
	MaxX     float64
	MaxY     float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEuclidean2D constructs a Euclidean2D space. velocity must be > 0.
// maxX/maxY bound the region RandomPoint draws from.
func NewEuclidean2D(velocity, maxX, maxY float64, seed int64) *Euclidean2D {
	return &Euclidean2D{
		Velocity: velocity,
		MaxX:     maxX,
		MaxY:     maxY,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Euclidean2D) D(u, v Point2D) float64 {
	return math.Hypot(v.X-u.X, v.Y-u.Y)
}

func (s *Euclidean2D) T(u, v Point2D) float64 {
	return s.D(u, v) / s.Velocity
}

func (s *Euclidean2D) InterpDist(u, v Point2D, distToDest float64) (Point2D, float64) {
	total := s.D(u, v)
	if total == 0 {
		return u, 0
	}
	if distToDest >= total {
		return u, 0
	}
	frac := (total - distToDest) / total
	return Point2D{
		X: u.X + frac*(v.X-u.X),
		Y: u.Y + frac*(v.Y-u.Y),
	}, 0
}

func (s *Euclidean2D) InterpTime(u, v Point2D, timeToDest float64) (Point2D, float64) {
	return s.InterpDist(u, v, timeToDest*s.Velocity)
}

func (s *Euclidean2D) RandomPoint() Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Point2D{X: s.rng.Float64() * s.MaxX, Y: s.rng.Float64() * s.MaxY}
}
