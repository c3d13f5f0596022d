// README: TransportSpace abstraction — distance, travel time, and spatial
// interpolation over an abstract location type. See SPEC_FULL.md §4.A.
package space

// TransportSpace is implemented by every concrete space the dispatcher and
// vehicle/fleet packages operate on. D, T, InterpDist and InterpTime are
// pure, deterministic, and referentially transparent for fixed arguments —
// callers (including a graph-backed implementation's internal cache) may
// memoise freely as long as memoisation is internally synchronised.
// RandomPoint is not: each call advances a random source.
type TransportSpace[L comparable] interface {
	// D returns the spatial distance between u and v. Not required to be
	// symmetric in general, though both reference spaces are.
	D(u, v L) float64
	// T returns the travel time between u and v. Conventionally T(u,v) =
	// D(u,v) / velocity.
	T(u, v L) float64
	// InterpDist returns the position of a traveller going from u toward v
	// that still has distToDest distance left to cover, plus the residual
	// distance still to cover before reaching that position (0 for
	// continuous spaces, >0 for discrete/graph spaces mid-edge).
	InterpDist(u, v L, distToDest float64) (L, float64)
	// InterpTime is the time-domain analogue of InterpDist.
	InterpTime(u, v L, timeToDest float64) (L, float64)
	// RandomPoint returns a uniformly chosen point in the space, used by
	// request generators (internal/requestgen).
	RandomPoint() L
}

// Point2D is a location in the real plane, shared by Euclidean2D and
// Manhattan2D.
type Point2D struct {
	X, Y float64
}

// GridPoint is a location on an integer lattice, used by SquareGrid.
type GridPoint struct {
	X, Y int
}
