// README: the insertion search — the combinatorial heart of the
// simulator. Given a request and a stoplist, find the cost-minimising
// pair of insertion indices for pickup and dropoff that respects capacity
// and every time window.
package dispatch

import (
	"math"

	"ridepool/internal/space"
	"ridepool/internal/stoplist"
)

// InsertionResult is the dispatcher's output: a tentative stoplist, the
// scalar cost of inserting into it, and the CPATs realised for the
// request's pickup and dropoff. MinCost = +Inf denotes infeasible, in
// which case Stoplist/PickupEAT/DropoffEAT are not meaningful.
type InsertionResult[L comparable] struct {
	Stoplist   stoplist.Stoplist[L]
	MinCost    float64
	PickupEAT  float64
	DropoffEAT float64
}

// Feasible reports whether this result represents a usable insertion.
func (r InsertionResult[L]) Feasible() bool {
	return !math.IsInf(r.MinCost, 1)
}

// Infeasible is the canonical infeasible result.
func Infeasible[L comparable]() InsertionResult[L] {
	return InsertionResult[L]{MinCost: math.Inf(1)}
}

// Dispatcher is implemented by every insertion-search strategy. Dispatch
// must be pure: it must not mutate sl.
type Dispatcher[L comparable] interface {
	Dispatch(req stoplist.TransportationRequest[L], sl stoplist.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) InsertionResult[L]
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// violatesPropagation walks forward from startIdx, propagating the
// cascading CPAT delay introduced by an upstream insertion while honouring
// time_window.min absorption (spec.md §4.C's "Propagation check"). It
// returns true the moment some downstream stop's time_window.max would be
// exceeded, and false once the delay is fully absorbed or the list ends.
func violatesPropagation[L comparable](sl stoplist.Stoplist[L], startIdx int, newCPAT float64) bool {
	idx := startIdx
	cpat := newCPAT
	for idx < len(sl) {
		if cpat > sl[idx].TimeWindow.Max {
			return true
		}
		oldDeparture := sl[idx].EstimatedDepartureTime()
		newDeparture := maxf(cpat, sl[idx].TimeWindow.Min)
		delay := newDeparture - oldDeparture
		if delay <= 0 {
			return false
		}
		idx++
		if idx >= len(sl) {
			return false
		}
		cpat = sl[idx].EstimatedArrivalTime + delay
	}
	return false
}

// insertPickupDropoff builds the new stoplist produced by inserting req's
// pickup immediately after old index i and its dropoff immediately after
// old index j (j >= i), per spec.md §4.C's construction steps. cpatPu is
// the CPAT already computed for the pickup; the dropoff's CPAT is always
// recomputed from its (possibly shifted) predecessor under drive-first.
func insertPickupDropoff[L comparable](sl stoplist.Stoplist[L], req stoplist.TransportationRequest[L], i, j int, cpatPu float64, tau func(L, L) float64) stoplist.Stoplist[L] {
	out := sl.Clone()

	pickupStop := stoplist.Stop[L]{
		Location:                req.Origin,
		RequestID:               req.ID,
		Action:                  stoplist.ActionPickup,
		EstimatedArrivalTime:    cpatPu,
		OccupancyAfterServicing: out[i].OccupancyAfterServicing + 1,
		TimeWindow:              req.PickupWindow,
	}
	out = insertAt(out, i+1, pickupStop)

	// j was an index into the pre-pickup-insertion stoplist; inserting at
	// i+1 shifts every index >= i+1 by one. If j == i the dropoff's
	// predecessor is the pickup itself, still at index i+1.
	jShifted := j + 1

	for k := i + 2; k <= jShifted; k++ {
		out[k].OccupancyAfterServicing++
	}

	predecessor := out[jShifted]
	dropoffStop := stoplist.Stop[L]{
		Location:                req.Destination,
		RequestID:               req.ID,
		Action:                  stoplist.ActionDropoff,
		EstimatedArrivalTime:    predecessor.EstimatedDepartureTime() + tau(predecessor.Location, req.Destination),
		OccupancyAfterServicing: predecessor.OccupancyAfterServicing - 1,
		TimeWindow:              req.DeliveryWindow,
	}
	out = insertAt(out, jShifted+1, dropoffStop)

	// Re-propagate EAT along the tail until the induced delay is absorbed
	// by a downstream time_window.min or the list ends.
	idx := jShifted + 2
	prevLoc := dropoffStop.Location
	prevDeparture := dropoffStop.EstimatedDepartureTime()
	for idx < len(out) {
		oldDeparture := out[idx].EstimatedDepartureTime()
		out[idx].EstimatedArrivalTime = prevDeparture + tau(prevLoc, out[idx].Location)
		newDeparture := out[idx].EstimatedDepartureTime()
		if newDeparture == oldDeparture {
			break
		}
		prevLoc = out[idx].Location
		prevDeparture = newDeparture
		idx++
	}

	return out
}

func insertAt[L comparable](sl stoplist.Stoplist[L], idx int, stop stoplist.Stop[L]) stoplist.Stoplist[L] {
	out := make(stoplist.Stoplist[L], len(sl)+1)
	copy(out, sl[:idx])
	out[idx] = stop
	copy(out[idx+1:], sl[idx:])
	return out
}
