// README: FleetState coordinates every vehicle in a simulation run: it
// fans time-advances and request quotes out across vehicles in parallel,
// merges the resulting events into simulated-time order, and brokers the
// two-phase offer/commit protocol spec.md §4.E describes. See
// SPEC_FULL.md §4.E.
package fleet

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"ridepool/internal/simevents"
	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
	"ridepool/internal/vehicle"
)

// ErrTrivialRequest mirrors stoplist.ErrTrivialRequest at the fleet
// boundary: a caller that builds a TransportationRequest by hand (e.g. a
// request generator bypassing stoplist.NewTransportationRequest) can
// still submit a trivial request, so FleetState checks again rather than
// trusting its callers, matching the teacher's defence-in-depth style of
// re-validating at every layer boundary (internal/modules/order/service.go
// re-checks invariants the HTTP handler already checked).
var ErrTrivialRequest = stoplist.ErrTrivialRequest

// ErrNoVehicleAvailable's message is the comment of the RequestRejection
// SubmitTransportationRequest returns when no vehicle in the fleet can
// serve the request at all.
var ErrNoVehicleAvailable = errors.New("fleet: no vehicle can serve this request")

// ErrStaleOffer's message is the comment of the RequestRejection
// ExecuteTransportationRequest returns when the named request has no
// matching pending offer — either it was never
// offered, a different request was offered since, or FastForward
// invalidated it in the meantime (spec.md §8 Scenario S4).
var ErrStaleOffer = errors.New("fleet: no matching pending offer for this request")

// pendingOffer records the single outstanding offer a fleet may hold at
// once. spec.md §4.E deliberately keeps this to one offer in flight: a
// second SubmitTransportationRequest call implicitly invalidates the
// first, exactly as a FastForward call does.
type pendingOffer struct {
	requestID    types.ID
	vehicleIndex int
}

// FleetState[L] owns a set of vehicles sharing one TransportSpace and
// holds at most one pending offer. Grounded on
// original_source/src/ridepy/fleet_state.py's FleetState, redesigned
// around spec.md §4.E's explicit two-phase offer/commit protocol instead
// of FleetState._apply_request_solution's immediate-apply.
type FleetState[L comparable] struct {
	Space    space.TransportSpace[L]
	Vehicles []*vehicle.VehicleState[L]

	mu          sync.Mutex
	pending     *pendingOffer
	currentTime float64
}

// NewFleetState collects already-seeded vehicles into a fleet. The
// per-vehicle CPE seeding that FleetState.__init__ performs via a
// synthetic InternalRequest(request_id=-1, ...) happens earlier, in
// vehicle.NewVehicleState.
func NewFleetState[L comparable](sp space.TransportSpace[L], vehicles []*vehicle.VehicleState[L]) *FleetState[L] {
	return &FleetState[L]{Space: sp, Vehicles: vehicles}
}

// FastForward advances every vehicle to t in parallel, merges the
// resulting stop events into (timestamp, vehicle_id) order, and
// invalidates any pending offer — a time advance between an offer and
// its commit means the offer's quoted EATs may no longer hold, so
// spec.md §4.E.1 requires it be discarded rather than honoured stale.
// Grounded on SlowSimpleFleetState.fast_forward's sorted-merge-by-time
// behaviour; the parallel fan-out itself is grounded on
// golang.org/x/sync/errgroup, the ecosystem's standard replacement for
// the teacher's own hand-rolled sync.WaitGroup fan-out (see
// internal/modules/order/race_test.go) when the fanned-out work can fail
// and the first error should short-circuit the rest.
func (f *FleetState[L]) FastForward(ctx context.Context, t float64) ([]simevents.StopEvent, error) {
	f.mu.Lock()
	f.pending = nil
	for _, v := range f.Vehicles {
		v.ClearProposal()
	}
	vehicles := f.Vehicles
	f.mu.Unlock()

	results := make([][]simevents.StopEvent, len(vehicles))
	g, _ := errgroup.WithContext(ctx)
	for i, v := range vehicles {
		i, v := i, v
		g.Go(func() error {
			events, err := v.FastForwardTime(t)
			if err != nil {
				return err
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.currentTime = t
	f.mu.Unlock()

	var merged []simevents.StopEvent
	for _, events := range results {
		merged = append(merged, events...)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		if merged[a].Timestamp != merged[b].Timestamp {
			return merged[a].Timestamp < merged[b].Timestamp
		}
		return merged[a].VehicleID < merged[b].VehicleID
	})
	return merged, nil
}

// SubmitTransportationRequest quotes req against every vehicle in
// parallel, records the cheapest feasible quote as the fleet's single
// pending offer, and returns either a RequestOffer or a
// RequestRejection. Grounded on
// _apply_request_solution's min-cost-selection, split into its own
// offer phase per spec.md §4.E.2.
func (f *FleetState[L]) SubmitTransportationRequest(ctx context.Context, req stoplist.TransportationRequest[L]) simevents.RequestEvent {
	if req.Origin == req.Destination {
		return simevents.RequestEvent{Rejection: &simevents.RequestRejection{
			Timestamp: f.CurrentTime(),
			RequestID: req.ID,
			Comment:   "trivial request: origin equals destination",
		}}
	}

	vehicles := f.Vehicles
	solutions := make([]vehicle.SingleVehicleSolution[L], len(vehicles))
	g, _ := errgroup.WithContext(ctx)
	for i, v := range vehicles {
		i, v := i, v
		g.Go(func() error {
			solutions[i] = v.HandleTransportationRequestSingleVehicle(req)
			return nil
		})
	}
	_ = g.Wait() // HandleTransportationRequestSingleVehicle never errors; it returns an infeasible solution instead.

	bestIdx := -1
	for i, s := range solutions {
		if !s.Feasible() {
			continue
		}
		if bestIdx < 0 || s.MinCost < solutions[bestIdx].MinCost {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return simevents.RequestEvent{Rejection: &simevents.RequestRejection{
			Timestamp: f.CurrentTime(),
			RequestID: req.ID,
			Comment:   ErrNoVehicleAvailable.Error(),
		}}
	}

	f.mu.Lock()
	f.pending = &pendingOffer{requestID: req.ID, vehicleIndex: bestIdx}
	now := f.currentTime
	f.mu.Unlock()

	best := solutions[bestIdx]
	return simevents.RequestEvent{Offer: &simevents.RequestOffer{
		Timestamp: now,
		RequestID: req.ID,
		EstimatedInVehicleWindow: simevents.InVehicleWindow{
			PickupEAT:  best.PickupEAT,
			DropoffEAT: best.DropoffEAT,
		},
		Comment: string(vehicles[bestIdx].ID),
	}}
}

// ExecuteTransportationRequest commits the fleet's pending offer for
// requestID, if it is still the current one, by swapping the winning
// vehicle's proposed stoplist into place. It never blocks on other
// vehicles: only the one vehicle named by the pending offer is touched.
// Grounded on _apply_request_solution's commit half, split out as its
// own phase per spec.md §4.E.3.
func (f *FleetState[L]) ExecuteTransportationRequest(requestID types.ID) simevents.RequestEvent {
	f.mu.Lock()
	pending := f.pending
	now := f.currentTime
	if pending == nil || pending.requestID != requestID {
		f.mu.Unlock()
		return simevents.RequestEvent{Rejection: &simevents.RequestRejection{
			Timestamp: now,
			RequestID: requestID,
			Comment:   ErrStaleOffer.Error(),
		}}
	}
	f.pending = nil
	winner := f.Vehicles[pending.vehicleIndex]
	f.mu.Unlock()

	if err := winner.SelectNewStoplist(); err != nil {
		return simevents.RequestEvent{Rejection: &simevents.RequestRejection{
			Timestamp: now,
			RequestID: requestID,
			Comment:   err.Error(),
		}}
	}
	return simevents.RequestEvent{Acceptance: &simevents.RequestAcceptance{
		Timestamp: now,
		RequestID: requestID,
		Comment:   string(winner.ID),
	}}
}

// CurrentTime is the simulated time of the fleet's last FastForward.
func (f *FleetState[L]) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTime
}
