// README: PoissonGenerator produces an unbounded stream of synthetic
// transportation requests with exponentially distributed inter-arrival
// times, for driving internal/fleet.Simulate without a real request
// source. See SPEC_FULL.md §3.2.
package requestgen

import (
	"math"
	"math/rand"

	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// PoissonGenerator draws origin/destination pairs uniformly from a
// TransportSpace and spaces their creation times by a Poisson process of
// the given rate, matching
// original_source/src/ridepy/util/request_generators.py's
// RandomRequestGenerator. Time windows follow the same three rules that
// docstring states: pickup must land within MaxPickupDelay of creation,
// and delivery must land within whichever of MaxDeliveryDelayAbs or
// MaxDeliveryDelayRel*direct_travel_time is tighter.
type PoissonGenerator[L comparable] struct {
	Space                  space.TransportSpace[L]
	Rate                   float64
	PickupTimewindowOffset float64
	MaxPickupDelay         float64
	MaxDeliveryDelayAbs    float64
	MaxDeliveryDelayRel    float64

	rng   *rand.Rand
	now   float64
	index int
}

// NewPoissonGenerator builds a generator seeded deterministically so a
// scenario replay is reproducible; unset delay bounds default to
// unbounded (math.Inf(1)), matching the Python defaults.
func NewPoissonGenerator[L comparable](sp space.TransportSpace[L], rate float64, seed int64) *PoissonGenerator[L] {
	return &PoissonGenerator[L]{
		Space:               sp,
		Rate:                rate,
		MaxPickupDelay:      math.Inf(1),
		MaxDeliveryDelayAbs: math.Inf(1),
		MaxDeliveryDelayRel: math.Inf(1),
		rng:                 rand.New(rand.NewSource(seed)),
	}
}

// Next always succeeds: a Poisson process never terminates on its own.
// Callers (internal/fleet.Simulate) decide when to stop pulling, via a
// cutoff time.
func (g *PoissonGenerator[L]) Next() (stoplist.TransportationRequest[L], bool) {
	g.now += g.rng.ExpFloat64() / g.Rate
	g.index++

	var origin, destination L
	for {
		origin = g.Space.RandomPoint()
		destination = g.Space.RandomPoint()
		if origin != destination {
			break
		}
	}

	directTravelTime := g.Space.T(origin, destination)
	pickupMin := g.now + g.PickupTimewindowOffset
	pickupMax := pickupMin + g.MaxPickupDelay
	deliveryMax := pickupMin + directTravelTime + math.Min(
		g.MaxDeliveryDelayAbs,
		g.MaxDeliveryDelayRel*directTravelTime,
	)

	req, err := stoplist.NewTransportationRequest(
		types.NewID(),
		g.now,
		origin,
		destination,
		stoplist.TimeWindow{Min: pickupMin, Max: pickupMax},
		stoplist.TimeWindow{Min: pickupMin, Max: deliveryMax},
	)
	if err != nil {
		// origin != destination is guaranteed by the loop above, so this
		// can only happen if RandomPoint's comparable type has a
		// degenerate equality; retry with a fresh draw.
		return g.Next()
	}
	return req, true
}
