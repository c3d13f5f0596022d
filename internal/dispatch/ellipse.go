package dispatch

import (
	"ridepool/internal/space"
	"ridepool/internal/stoplist"
)

// Ellipse is the "Simple Ellipse" insertion dispatcher: rather than
// minimising cost, it accepts the first mid-list insertion whose per-edge
// relative detour stays within MaxRelativeDetour, falling back to
// appending pickup and/or dropoff at the tail when no mid-list slot
// qualifies. Grounded on
// original_source/src/ridepy/util/dispatchers/taxicab.py's always-append
// single-seat fast path, generalised to the detour-bounded mid-list search
// spec.md §4.C describes.
type Ellipse[L comparable] struct {
	MaxRelativeDetour float64
}

func (d Ellipse[L]) Dispatch(req stoplist.TransportationRequest[L], sl stoplist.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) InsertionResult[L] {
	tau := sp.T
	n := len(sl)

	pickupIdx := -1
	var cpatPu float64
	for i := 0; i+1 < n; i++ {
		if sl[i].OccupancyAfterServicing == seatCapacity {
			continue
		}
		depI := sl[i].EstimatedDepartureTime()
		cpat := depI + tau(sl[i].Location, req.Origin)
		if cpat > req.PickupWindow.Max {
			continue
		}
		if i+1 < n && !withinDetour(tau(sl[i].Location, sl[i+1].Location), tau(sl[i].Location, req.Origin)+tau(req.Origin, sl[i+1].Location), d.MaxRelativeDetour) {
			continue
		}
		pickupIdx = i
		cpatPu = cpat
		break
	}

	if pickupIdx < 0 {
		return d.appendBoth(sl, req, tau)
	}

	pickupDep := maxf(req.PickupWindow.Min, cpatPu)

	dropoffIdx := -1
	for j := pickupIdx; j+1 < n; j++ {
		if sl[j].OccupancyAfterServicing == seatCapacity {
			break
		}
		var fromLoc L
		var depAtJ float64
		if j == pickupIdx {
			fromLoc, depAtJ = req.Origin, pickupDep
		} else {
			fromLoc, depAtJ = sl[j].Location, sl[j].EstimatedDepartureTime()
		}
		cpatDo := depAtJ + tau(fromLoc, req.Destination)
		if cpatDo > req.DeliveryWindow.Max {
			continue
		}
		if j+1 < n {
			directEdge := tau(sl[j].Location, sl[j+1].Location)
			detourEdge := tau(fromLoc, req.Destination) + tau(req.Destination, sl[j+1].Location)
			if !withinDetour(directEdge, detourEdge, d.MaxRelativeDetour) {
				continue
			}
		}
		dropoffIdx = j
		break
	}

	if dropoffIdx < 0 {
		return d.appendDropoffOnly(sl, req, pickupIdx, cpatPu, tau)
	}

	newSL := insertPickupDropoff(sl, req, pickupIdx, dropoffIdx, cpatPu, tau)
	return InsertionResult[L]{
		Stoplist:   newSL,
		MinCost:    0,
		PickupEAT:  cpatPu,
		DropoffEAT: findStopEATEllipse(newSL, req),
	}
}

func withinDetour(direct, detoured, maxRelative float64) bool {
	if direct <= 0 {
		return true
	}
	return detoured/direct-1 <= maxRelative
}

// appendBoth appends pickup then dropoff at the stoplist's tail, the
// fallback used when no mid-list pickup slot satisfies the detour bound
// (or the stoplist holds only the CPE), mirroring taxicab.py's
// unconditional tail-append behaviour.
func (d Ellipse[L]) appendBoth(sl stoplist.Stoplist[L], req stoplist.TransportationRequest[L], tau func(L, L) float64) InsertionResult[L] {
	n := len(sl)
	tail := sl[n-1]
	cpatPu := tail.EstimatedDepartureTime() + tau(tail.Location, req.Origin)
	if cpatPu > req.PickupWindow.Max {
		return Infeasible[L]()
	}
	extraPickup := tau(tail.Location, req.Origin)

	pickupStop := stoplist.Stop[L]{
		Location:                req.Origin,
		RequestID:               req.ID,
		Action:                  stoplist.ActionPickup,
		EstimatedArrivalTime:    cpatPu,
		OccupancyAfterServicing: tail.OccupancyAfterServicing + 1,
		TimeWindow:              req.PickupWindow,
	}
	pickupDep := pickupStop.EstimatedDepartureTime()
	cpatDo := pickupDep + tau(req.Origin, req.Destination)
	if cpatDo > req.DeliveryWindow.Max {
		return Infeasible[L]()
	}
	dropoffStop := stoplist.Stop[L]{
		Location:                req.Destination,
		RequestID:               req.ID,
		Action:                  stoplist.ActionDropoff,
		EstimatedArrivalTime:    cpatDo,
		OccupancyAfterServicing: pickupStop.OccupancyAfterServicing - 1,
		TimeWindow:              req.DeliveryWindow,
	}

	out := append(sl.Clone(), pickupStop, dropoffStop)
	extraDropoff := tau(req.Origin, req.Destination)
	return InsertionResult[L]{
		Stoplist:   out,
		MinCost:    extraPickup + extraDropoff,
		PickupEAT:  cpatPu,
		DropoffEAT: cpatDo,
	}
}

// appendDropoffOnly is used when the pickup found a mid-list slot but no
// dropoff slot satisfied the detour bound; the dropoff is appended at the
// tail of the stoplist that would result from the mid-list pickup
// insertion alone.
func (d Ellipse[L]) appendDropoffOnly(sl stoplist.Stoplist[L], req stoplist.TransportationRequest[L], pickupIdx int, cpatPu float64, tau func(L, L) float64) InsertionResult[L] {
	withPickup := insertPickupDropoffPickupOnly(sl, req, pickupIdx, cpatPu)
	tail := withPickup[len(withPickup)-1]
	cpatDo := tail.EstimatedDepartureTime() + tau(tail.Location, req.Destination)
	if cpatDo > req.DeliveryWindow.Max {
		return Infeasible[L]()
	}
	dropoffStop := stoplist.Stop[L]{
		Location:                req.Destination,
		RequestID:               req.ID,
		Action:                  stoplist.ActionDropoff,
		EstimatedArrivalTime:    cpatDo,
		OccupancyAfterServicing: tail.OccupancyAfterServicing - 1,
		TimeWindow:              req.DeliveryWindow,
	}
	out := append(withPickup, dropoffStop)
	extra := tau(tail.Location, req.Destination)
	return InsertionResult[L]{
		Stoplist:   out,
		MinCost:    extra,
		PickupEAT:  cpatPu,
		DropoffEAT: cpatDo,
	}
}

// insertPickupDropoffPickupOnly inserts just the pickup stop mid-list,
// incrementing downstream occupancy, without touching any dropoff — used
// by appendDropoffOnly, which appends the dropoff separately afterward.
func insertPickupDropoffPickupOnly[L comparable](sl stoplist.Stoplist[L], req stoplist.TransportationRequest[L], i int, cpatPu float64) stoplist.Stoplist[L] {
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
	for k := i + 2; k < len(out); k++ {
		out[k].OccupancyAfterServicing++
	}
	return out
}

func findStopEATEllipse[L comparable](sl stoplist.Stoplist[L], req stoplist.TransportationRequest[L]) float64 {
	for _, s := range sl {
		if s.RequestID == req.ID && s.Action == stoplist.ActionDropoff {
			return s.EstimatedArrivalTime
		}
	}
	return 0
}
