// README: VehicleState owns one vehicle's stoplist, fast-forwards it
// through simulated time, and proposes/commits dispatcher insertions. See
// SPEC_FULL.md §4.D.
package vehicle

import (
	"errors"
	"math"
	"sync"

	"ridepool/internal/dispatch"
	"ridepool/internal/simevents"
	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// ErrTimeReversal is returned by FastForwardTime when asked to advance to
// a time before the vehicle's current_time. spec.md §7 classes this as a
// caller bug ("hard programmer error"); following the teacher's
// convention of never panicking inside library code (see
// internal/modules/order/service.go's ErrInvalidState), it is surfaced as
// an ordinary error instead.
var ErrTimeReversal = errors.New("vehicle: fast_forward_time called with t before current_time")

// ErrNoProposal is returned by SelectNewStoplist when there is no pending
// proposed stoplist to commit.
var ErrNoProposal = errors.New("vehicle: no proposed stoplist to select")

// SingleVehicleSolution is one vehicle's quote for a transportation
// request: the dispatcher's cost and the realised pickup/dropoff CPATs,
// or MinCost = +Inf if this vehicle cannot serve the request at all.
type SingleVehicleSolution[L comparable] struct {
	VehicleID  types.ID
	MinCost    float64
	PickupEAT  float64
	DropoffEAT float64
}

func (s SingleVehicleSolution[L]) Feasible() bool {
	return !math.IsInf(s.MinCost, 1)
}

// VehicleState[L] is exclusively owned by one vehicle's worker at a time;
// the fleet coordinator is the only other mutator, and only between
// parallel phases (spec.md §5).
type VehicleState[L comparable] struct {
	ID           types.ID
	SeatCapacity int
	Space        space.TransportSpace[L]
	Dispatcher   dispatch.Dispatcher[L]

	mu               sync.Mutex
	stoplist         stoplist.Stoplist[L]
	proposedStoplist stoplist.Stoplist[L]
	currentTime      float64
}

// NewVehicleState seeds the CPE at initialLocation, matching the way
// ridepy's FleetState seeds every vehicle's stoplist with a synthetic
// InternalRequest stop before the simulation begins (spec.md §9).
func NewVehicleState[L comparable](id types.ID, seatCapacity int, initialLocation L, sp space.TransportSpace[L], d dispatch.Dispatcher[L]) *VehicleState[L] {
	return &VehicleState[L]{
		ID:           id,
		SeatCapacity: seatCapacity,
		Space:        sp,
		Dispatcher:   d,
		stoplist:     stoplist.Stoplist[L]{stoplist.NewCPE[L](initialLocation, 0, 0)},
	}
}

// Stoplist returns a snapshot of the current stoplist, safe for the
// caller to read (not to mutate — it is not cloned for this read-only
// accessor's performance, callers must treat it as immutable).
func (v *VehicleState[L]) Stoplist() stoplist.Stoplist[L] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stoplist
}

func (v *VehicleState[L]) CurrentTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentTime
}

// FastForwardTime drains every stop serviceable by t, relocates the CPE
// to the vehicle's inferred position at t, and returns the events
// emitted, in stop order. Grounded on
// original_source/src/ridepy/vehicle_state.py's
// VehicleState.fast_forward_time.
func (v *VehicleState[L]) FastForwardTime(t float64) ([]simevents.StopEvent, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t < v.currentTime {
		return nil, ErrTimeReversal
	}

	var events []simevents.StopEvent
	serviced := 0
	for serviced+1 < len(v.stoplist) {
		s := v.stoplist[serviced+1]
		serviceTime := s.ServiceTime()
		if serviceTime > t {
			break
		}
		events = append(events, simevents.StopEvent{
			Timestamp: serviceTime,
			VehicleID: v.ID,
			RequestID: s.RequestID,
			Action:    s.Action,
		})
		serviced++
	}

	lastServiced := v.stoplist[0]
	if serviced > 0 {
		lastServiced = v.stoplist[serviced]
	}

	remaining := append(stoplist.Stoplist[L]{}, v.stoplist[serviced+1:]...)

	newCPE := stoplist.NewCPE[L](lastServiced.Location, t, lastServiced.OccupancyAfterServicing)
	if len(remaining) > 0 {
		next := remaining[0]
		loc, residual := v.Space.InterpTime(lastServiced.Location, next.Location, next.EstimatedArrivalTime-t)
		newCPE.Location = loc
		newCPE.EstimatedArrivalTime = t + residual
	} else {
		newCPE.Location = lastServiced.Location
		newCPE.EstimatedArrivalTime = t
	}

	v.stoplist = append(stoplist.Stoplist[L]{newCPE}, remaining...)
	v.currentTime = t
	return events, nil
}

// HandleTransportationRequestSingleVehicle quotes this vehicle for req,
// storing the tentative stoplist so a later SelectNewStoplist can commit
// it. Grounded on
// original_source/src/ridepy/vehicle_state.py's
// handle_transportation_request_single_vehicle.
func (v *VehicleState[L]) HandleTransportationRequestSingleVehicle(req stoplist.TransportationRequest[L]) SingleVehicleSolution[L] {
	v.mu.Lock()
	defer v.mu.Unlock()

	result := v.Dispatcher.Dispatch(req, v.stoplist, v.Space, v.SeatCapacity)
	if !result.Feasible() {
		v.proposedStoplist = nil
		return SingleVehicleSolution[L]{VehicleID: v.ID, MinCost: result.MinCost}
	}

	v.proposedStoplist = result.Stoplist
	return SingleVehicleSolution[L]{
		VehicleID:  v.ID,
		MinCost:    result.MinCost,
		PickupEAT:  result.PickupEAT,
		DropoffEAT: result.DropoffEAT,
	}
}

// SelectNewStoplist atomically swaps the proposed stoplist into place.
func (v *VehicleState[L]) SelectNewStoplist() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.proposedStoplist == nil {
		return ErrNoProposal
	}
	v.stoplist = v.proposedStoplist
	v.proposedStoplist = nil
	return nil
}

// ClearProposal discards any pending proposal without committing it,
// used by the fleet coordinator when invalidating a stale offer.
func (v *VehicleState[L]) ClearProposal() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.proposedStoplist = nil
}

// CurrentPosition interpolates between the CPE and the next stop at
// current_time, for visualisation (spec.md §4.D.4).
func (v *VehicleState[L]) CurrentPosition() L {
	v.mu.Lock()
	defer v.mu.Unlock()
	cpe := v.stoplist[0]
	if len(v.stoplist) < 2 {
		return cpe.Location
	}
	next := v.stoplist[1]
	loc, _ := v.Space.InterpTime(cpe.Location, next.Location, next.EstimatedArrivalTime-v.currentTime)
	return loc
}
