// README: the event types emitted by VehicleState.fast_forward_time and
// FleetState's request-handling operations.
package simevents

import (
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// StopEvent records that a stop was serviced.
type StopEvent struct {
	Timestamp float64
	VehicleID types.ID
	RequestID types.ID
	Action    stoplist.StopAction
}

// RequestOffer is emitted by SubmitTransportationRequest when some vehicle
// can feasibly serve the request; it does not commit anything.
type RequestOffer struct {
	Timestamp                float64
	RequestID                types.ID
	EstimatedInVehicleWindow InVehicleWindow
	Comment                  string
}

// InVehicleWindow is the realised (pickup.EAT, dropoff.EAT) pair quoted to
// the caller as the estimated in-vehicle time.
type InVehicleWindow struct {
	PickupEAT  float64
	DropoffEAT float64
}

// RequestRejection is emitted for trivial requests, infeasible requests,
// and stale/mismatched commits.
type RequestRejection struct {
	Timestamp float64
	RequestID types.ID
	Comment   string
}

// RequestAcceptance is emitted once ExecuteTransportationRequest commits
// the chosen vehicle's proposed stoplist.
type RequestAcceptance struct {
	Timestamp float64
	RequestID types.ID
	Comment   string
}

// RequestEvent is the sum type returned by the fleet's request-handling
// operations: exactly one of Offer, Rejection, or Acceptance is non-nil.
type RequestEvent struct {
	Offer      *RequestOffer
	Rejection  *RequestRejection
	Acceptance *RequestAcceptance
}
