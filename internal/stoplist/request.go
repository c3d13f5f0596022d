// README: Request and time-window types shared by every stop in a stoplist.
package stoplist

import (
	"errors"
	"math"

	"ridepool/internal/types"
)

// ErrTrivialRequest is returned by NewTransportationRequest when origin and
// destination coincide; such requests are rejected before ever reaching a
// dispatcher.
var ErrTrivialRequest = errors.New("stoplist: trivial request (origin == destination)")

// TimeWindow is a closed admissible service interval [Min, Max]: an
// arrival exactly at Max is still admissible. Max may be +Inf for "no
// deadline".
type TimeWindow struct {
	Min float64
	Max float64
}

// UnboundedTimeWindow is the default window used by internal stops and by
// requests that never specify one.
var UnboundedTimeWindow = TimeWindow{Min: 0, Max: math.Inf(1)}

// TransportationRequest[L] is a passenger (or parcel) trip: pick up at
// Origin within PickupWindow, drop off at Destination within
// DeliveryWindow. CreationTime is in the same simulated-seconds unit as
// every EAT and TimeWindow bound in the domain model (not a wall-clock
// timestamp — that belongs to the persistence/telemetry layers, not the
// dispatch core).
type TransportationRequest[L comparable] struct {
	ID             types.ID
	CreationTime   float64
	Origin         L
	Destination    L
	PickupWindow   TimeWindow
	DeliveryWindow TimeWindow
}

// NewTransportationRequest validates origin != destination before
// constructing the request, matching spec.md §3's stated invariant that
// trivial requests are rejected upstream of the dispatcher.
func NewTransportationRequest[L comparable](id types.ID, creationTime float64, origin, destination L, pickup, delivery TimeWindow) (TransportationRequest[L], error) {
	if origin == destination {
		return TransportationRequest[L]{}, ErrTrivialRequest
	}
	return TransportationRequest[L]{
		ID:             id,
		CreationTime:   creationTime,
		Origin:         origin,
		Destination:    destination,
		PickupWindow:   pickup,
		DeliveryWindow: delivery,
	}, nil
}

// InternalRequest[L] marks a non-passenger stop: the vehicle's initial
// position, or a repositioning move. Used to seed the CPE.
type InternalRequest[L comparable] struct {
	ID           types.ID
	CreationTime float64
	Location     L
}
