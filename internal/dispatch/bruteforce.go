package dispatch

import (
	"math"

	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// BruteForce is the total-travel-time-minimising insertion dispatcher:
// exhaustive O(n^2) enumeration of (pickup_idx, dropoff_idx) pairs,
// grounded on original_source/src/ridepy/util/dispatchers/ridepooling.py's
// BruteForceTotalTravelTimeMinimizingDispatcher.
type BruteForce[L comparable] struct{}

func (BruteForce[L]) Dispatch(req stoplist.TransportationRequest[L], sl stoplist.Stoplist[L], sp space.TransportSpace[L], seatCapacity int) InsertionResult[L] {
	tau := sp.T
	n := len(sl)

	minCost := math.Inf(1)
	bestI, bestJ := -1, -1
	var bestPickupCPAT float64

	for i := 0; i < n; i++ {
		if sl[i].OccupancyAfterServicing == seatCapacity {
			// Occupancy fluctuates with later dropoffs, so a full seat at i
			// does not rule out other pickup indices — only skip this one.
			continue
		}

		depI := sl[i].EstimatedDepartureTime()
		cpatPu := depI + tau(sl[i].Location, req.Origin)
		if cpatPu > req.PickupWindow.Max {
			continue
		}
		pickupDep := maxf(req.PickupWindow.Min, cpatPu)

		// Adjacent dropoff: j == i.
		cpatDoAdj := pickupDep + tau(req.Origin, req.Destination)
		if cpatDoAdj <= req.DeliveryWindow.Max {
			var costAdj float64
			feasible := true
			if i+1 < n {
				tauStopNext := tau(sl[i].Location, sl[i+1].Location)
				costAdj = tau(sl[i].Location, req.Origin) + tau(req.Origin, req.Destination) +
					tau(req.Destination, sl[i+1].Location) - tauStopNext
				depDoAdj := maxf(cpatDoAdj, req.DeliveryWindow.Min)
				feasible = !violatesPropagation(sl, i+1, depDoAdj+tau(req.Destination, sl[i+1].Location))
			} else {
				costAdj = tau(sl[i].Location, req.Origin) + tau(req.Origin, req.Destination)
			}
			if feasible && costAdj < minCost {
				minCost = costAdj
				bestI, bestJ = i, i
				bestPickupCPAT = cpatPu
			}
		}

		// Disjoint dropoff search: j > i.
		if i+1 < n {
			cpatAfterPu := pickupDep + tau(req.Origin, sl[i+1].Location)
			if violatesPropagation(sl, i+1, cpatAfterPu) {
				continue
			}
			pickupCost := tau(sl[i].Location, req.Origin) + tau(req.Origin, sl[i+1].Location) - tau(sl[i].Location, sl[i+1].Location)
			delta := cpatAfterPu - sl[i+1].EstimatedArrivalTime

			for j := i + 1; j < n; j++ {
				if sl[j].OccupancyAfterServicing == seatCapacity {
					break
				}
				depJShifted := maxf(sl[j].EstimatedArrivalTime+delta, sl[j].TimeWindow.Min)
				cpatDo := depJShifted + tau(sl[j].Location, req.Destination)
				if cpatDo > req.DeliveryWindow.Max {
					break
				}

				var dropoffCost float64
				feasible := true
				if j+1 < n {
					tauStopNext := tau(sl[j].Location, sl[j+1].Location)
					dropoffCost = tau(sl[j].Location, req.Destination) + tau(req.Destination, sl[j+1].Location) - tauStopNext
					depDo := maxf(cpatDo, req.DeliveryWindow.Min)
					feasible = !violatesPropagation(sl, j+1, depDo+tau(req.Destination, sl[j+1].Location))
				} else {
					dropoffCost = tau(sl[j].Location, req.Destination)
				}

				if feasible && pickupCost+dropoffCost < minCost {
					minCost = pickupCost + dropoffCost
					bestI, bestJ = i, j
					bestPickupCPAT = cpatPu
				}

				delta = depJShifted - sl[j].EstimatedDepartureTime()
			}
		}
	}

	if bestI < 0 {
		return Infeasible[L]()
	}

	newSL := insertPickupDropoff(sl, req, bestI, bestJ, bestPickupCPAT, tau)
	return InsertionResult[L]{
		Stoplist:   newSL,
		MinCost:    minCost,
		PickupEAT:  findStopEAT(newSL, req.ID, stoplist.ActionPickup),
		DropoffEAT: findStopEAT(newSL, req.ID, stoplist.ActionDropoff),
	}
}

// findStopEAT locates the freshly inserted pickup or dropoff stop for
// requestID and returns its realised EAT, for reporting back to the
// caller per spec.md §3's InsertionResult.
func findStopEAT[L comparable](sl stoplist.Stoplist[L], requestID types.ID, action stoplist.StopAction) float64 {
	for _, s := range sl {
		if s.RequestID == requestID && s.Action == action {
			return s.EstimatedArrivalTime
		}
	}
	return 0
}
