package stoplist

import "ridepool/internal/types"

// StopAction classifies what happens when a stop is serviced.
type StopAction string

const (
	ActionPickup   StopAction = "pickup"
	ActionDropoff  StopAction = "dropoff"
	ActionInternal StopAction = "internal"
)

// Stop[L] is one planned itinerary entry. RequestID ties a pickup to its
// matching dropoff; both share the same RequestID for a transportation
// request. The CPE is the Stop at index 0 of a Stoplist, always
// ActionInternal.
type Stop[L comparable] struct {
	Location                L
	RequestID               types.ID
	Action                  StopAction
	EstimatedArrivalTime    float64 // EAT / CPAT
	OccupancyAfterServicing int
	TimeWindow              TimeWindow
}

// EstimatedDepartureTime is the drive-first departure convention: depart as
// soon as service and the earliest-admissible-service-time allow.
func (s Stop[L]) EstimatedDepartureTime() float64 {
	if s.TimeWindow.Min > s.EstimatedArrivalTime {
		return s.TimeWindow.Min
	}
	return s.EstimatedArrivalTime
}

// ServiceTime is the time a stop is actually serviced under drive-first;
// identical to EstimatedDepartureTime but named for fast-forward's use
// (spec.md §4.D.1).
func (s Stop[L]) ServiceTime() float64 {
	return s.EstimatedDepartureTime()
}

// NewCPE builds the synthetic head stop encoding a vehicle's current
// position and the time at which it finishes its in-progress edge.
func NewCPE[L comparable](location L, eat float64, occupancy int) Stop[L] {
	return Stop[L]{
		Location:                location,
		Action:                  ActionInternal,
		EstimatedArrivalTime:    eat,
		OccupancyAfterServicing: occupancy,
		TimeWindow:              UnboundedTimeWindow,
	}
}
