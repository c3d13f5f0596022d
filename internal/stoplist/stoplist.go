package stoplist

import (
	"errors"
	"fmt"

	"ridepool/internal/types"
)

// Stoplist[L] is the ordered plan of future stops for one vehicle. Index 0
// is always the CPE (spec.md §3).
type Stoplist[L comparable] []Stop[L]

// Clone returns a deep copy safe for a dispatcher to mutate while leaving
// the original untouched (spec.md §9: "the dispatcher must not mutate the
// stoplist it receives").
func (sl Stoplist[L]) Clone() Stoplist[L] {
	out := make(Stoplist[L], len(sl))
	copy(out, sl)
	return out
}

// CPE returns the synthetic head stop.
func (sl Stoplist[L]) CPE() Stop[L] {
	return sl[0]
}

var (
	ErrEmptyStoplist        = errors.New("stoplist: must contain at least the CPE")
	ErrNonMonotoneEAT       = errors.New("stoplist: EAT is not non-decreasing")
	ErrOccupancyMismatch    = errors.New("stoplist: occupancy_after_servicing inconsistent with predecessor and action")
	ErrOccupancyOutOfBounds = errors.New("stoplist: occupancy_after_servicing out of [0, seat_capacity]")
	ErrUnmatchedPickup      = errors.New("stoplist: pickup has no later matching dropoff")
	ErrWindowViolated       = errors.New("stoplist: EAT exceeds time_window.max")
	ErrCPEOutOfSync         = errors.New("stoplist: current_time must lie within [CPE.EAT, next.EAT]")
)

// CheckInvariants verifies the six stoplist invariants from spec.md §3.
// It is intended for property-based tests and debug-build assertions, not
// for hot-path use (spec.md §7: invariant breaches are implementation bugs,
// undefined behaviour in release builds).
func CheckInvariants[L comparable](sl Stoplist[L], seatCapacity int, currentTime float64) error {
	if len(sl) == 0 {
		return ErrEmptyStoplist
	}

	prevOccupancy := sl[0].OccupancyAfterServicing
	seenPickup := map[types.ID]int{}
	for i := 1; i < len(sl); i++ {
		s := sl[i]
		if s.EstimatedArrivalTime < sl[i-1].EstimatedArrivalTime {
			return fmt.Errorf("%w: stop %d has EAT %g < predecessor EAT %g", ErrNonMonotoneEAT, i, s.EstimatedArrivalTime, sl[i-1].EstimatedArrivalTime)
		}

		var wantDelta int
		switch s.Action {
		case ActionPickup:
			wantDelta = 1
		case ActionDropoff:
			wantDelta = -1
		case ActionInternal:
			wantDelta = 0
		}
		if s.OccupancyAfterServicing != prevOccupancy+wantDelta {
			return fmt.Errorf("%w: stop %d occupancy %d, predecessor %d, action %s", ErrOccupancyMismatch, i, s.OccupancyAfterServicing, prevOccupancy, s.Action)
		}
		if s.OccupancyAfterServicing < 0 || s.OccupancyAfterServicing > seatCapacity {
			return fmt.Errorf("%w: stop %d occupancy %d, capacity %d", ErrOccupancyOutOfBounds, i, s.OccupancyAfterServicing, seatCapacity)
		}
		if s.EstimatedArrivalTime > s.TimeWindow.Max {
			return fmt.Errorf("%w: stop %d EAT %g > max %g", ErrWindowViolated, i, s.EstimatedArrivalTime, s.TimeWindow.Max)
		}

		switch s.Action {
		case ActionPickup:
			seenPickup[s.RequestID] = i
		case ActionDropoff:
			pickupIdx, ok := seenPickup[s.RequestID]
			if !ok || pickupIdx >= i {
				return fmt.Errorf("%w: request %v dropoff at %d", ErrUnmatchedPickup, s.RequestID, i)
			}
			delete(seenPickup, s.RequestID)
		}

		prevOccupancy = s.OccupancyAfterServicing
	}

	if len(seenPickup) > 0 {
		return ErrUnmatchedPickup
	}

	if len(sl) > 1 {
		if currentTime < sl[0].EstimatedArrivalTime || currentTime > sl[1].EstimatedArrivalTime {
			return fmt.Errorf("%w: current_time %g, CPE.EAT %g, next.EAT %g", ErrCPEOutOfSync, currentTime, sl[0].EstimatedArrivalTime, sl[1].EstimatedArrivalTime)
		}
	}

	return nil
}
