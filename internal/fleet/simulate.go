package fleet

import (
	"context"
	"math"

	"ridepool/internal/simevents"
	"ridepool/internal/stoplist"
)

// RequestGenerator is the minimal pull interface Simulate needs from a
// request stream: structural typing lets internal/requestgen's generators
// satisfy it without fleet importing that package. Next returns false once
// the stream is exhausted.
type RequestGenerator[L comparable] interface {
	Next() (stoplist.TransportationRequest[L], bool)
}

// SimulationEvent is the sum of every event Simulate can emit, in the
// order they occurred.
type SimulationEvent[L comparable] struct {
	Stop       *simevents.StopEvent
	Offer      *simevents.RequestOffer
	Rejection  *simevents.RequestRejection
	Acceptance *simevents.RequestAcceptance
}

// Simulate drives the fleet through requests, advancing the clock to each
// request's CreationTime, submitting it, and immediately executing any
// resulting offer — a scripted replay has no room for a human deliberation
// step between offer and commit, so the two-phase protocol collapses to
// submit-then-execute here without abandoning it as the primitive.
// Once requests is exhausted (or a request's CreationTime exceeds
// tCutoff), the fleet is drained by fast-forwarding to the latest
// remaining stop across all vehicles, capped at tCutoff. Grounded on
// original_source/src/ridepy/fleet_state.py's FleetState.simulate.
func (f *FleetState[L]) Simulate(ctx context.Context, requests RequestGenerator[L], tCutoff float64) ([]SimulationEvent[L], error) {
	var events []SimulationEvent[L]

	for {
		req, ok := requests.Next()
		if !ok {
			break
		}
		if req.CreationTime > tCutoff {
			break
		}

		stopEvents, err := f.FastForward(ctx, req.CreationTime)
		if err != nil {
			return nil, err
		}
		for i := range stopEvents {
			events = append(events, SimulationEvent[L]{Stop: &stopEvents[i]})
		}

		offer := f.SubmitTransportationRequest(ctx, req)
		switch {
		case offer.Offer != nil:
			events = append(events, SimulationEvent[L]{Offer: offer.Offer})
			commit := f.ExecuteTransportationRequest(req.ID)
			events = append(events, toSimulationEvent[L](commit))
		case offer.Rejection != nil:
			events = append(events, SimulationEvent[L]{Rejection: offer.Rejection})
		}
	}

	drainTo := tCutoff
	if maxStop := f.latestStopTime(); maxStop < drainTo {
		drainTo = maxStop
	}
	if drainTo > f.CurrentTime() {
		stopEvents, err := f.FastForward(ctx, drainTo)
		if err != nil {
			return nil, err
		}
		for i := range stopEvents {
			events = append(events, SimulationEvent[L]{Stop: &stopEvents[i]})
		}
	}

	return events, nil
}

func toSimulationEvent[L comparable](e simevents.RequestEvent) SimulationEvent[L] {
	return SimulationEvent[L]{Rejection: e.Rejection, Acceptance: e.Acceptance}
}

// latestStopTime is the furthest-out EstimatedArrivalTime among every
// vehicle's final stop, the natural point at which a simulation with no
// more incoming requests has nothing left to do.
func (f *FleetState[L]) latestStopTime() float64 {
	latest := 0.0
	for _, v := range f.Vehicles {
		sl := v.Stoplist()
		if len(sl) == 0 {
			continue
		}
		if last := sl[len(sl)-1].EstimatedArrivalTime; last > latest {
			latest = last
		}
	}
	return math.Max(latest, f.CurrentTime())
}
