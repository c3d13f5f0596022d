package fleet

import (
	"context"
	"testing"

	"ridepool/internal/dispatch"
	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
	"ridepool/internal/vehicle"
)

func newTestFleet(n int) *FleetState[space.Point2D] {
	sp := space.NewEuclidean2D(1, 1000, 1000, 1)
	vehicles := make([]*vehicle.VehicleState[space.Point2D], n)
	for i := range vehicles {
		vehicles[i] = vehicle.NewVehicleState[space.Point2D](
			types.NewID(), 4, space.Point2D{X: 0, Y: 0}, sp, dispatch.BruteForce[space.Point2D]{},
		)
	}
	return NewFleetState[space.Point2D](sp, vehicles)
}

// TestSubmitTransportationRequest_RejectsTrivial is spec.md §8 Scenario
// S3: a request whose origin equals its destination is rejected before
// any vehicle is consulted.
func TestSubmitTransportationRequest_RejectsTrivial(t *testing.T) {
	f := newTestFleet(2)
	req := stoplist.TransportationRequest[space.Point2D]{
		ID:             types.NewID(),
		Origin:         space.Point2D{X: 5, Y: 5},
		Destination:    space.Point2D{X: 5, Y: 5},
		PickupWindow:   stoplist.UnboundedTimeWindow,
		DeliveryWindow: stoplist.UnboundedTimeWindow,
	}

	event := f.SubmitTransportationRequest(context.Background(), req)
	if event.Rejection == nil {
		t.Fatalf("expected a rejection for a trivial request, got %+v", event)
	}
	if event.Offer != nil {
		t.Errorf("trivial request should never produce an offer")
	}
}

// TestExecuteTransportationRequest_RejectsStaleOffer is spec.md §8
// Scenario S4: committing a request_id that was never offered (or whose
// offer has since been superseded or invalidated) is rejected rather
// than silently applied.
func TestExecuteTransportationRequest_RejectsStaleOffer(t *testing.T) {
	f := newTestFleet(1)

	event := f.ExecuteTransportationRequest(types.NewID())
	if event.Rejection == nil {
		t.Fatalf("expected rejection for an unknown request id, got %+v", event)
	}
}

// TestFastForward_InvalidatesPendingOffer: an offer becomes stale the
// moment the fleet's clock advances, even if nothing about the offered
// vehicle changed. Exercises the other half of Scenario S4.
func TestFastForward_InvalidatesPendingOffer(t *testing.T) {
	f := newTestFleet(1)
	req, err := stoplist.NewTransportationRequest(types.NewID(), 0, space.Point2D{X: 0, Y: 0}, space.Point2D{X: 3, Y: 4}, stoplist.UnboundedTimeWindow, stoplist.UnboundedTimeWindow)
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}

	offer := f.SubmitTransportationRequest(context.Background(), req)
	if offer.Offer == nil {
		t.Fatalf("expected a feasible offer, got %+v", offer)
	}

	if _, err := f.FastForward(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	commit := f.ExecuteTransportationRequest(req.ID)
	if commit.Rejection == nil {
		t.Fatalf("expected the offer to be invalidated by the intervening FastForward, got %+v", commit)
	}
}

// TestSubmitAndExecute_HappyPath exercises the full offer/commit cycle:
// submit on a two-vehicle fleet produces a feasible offer, and executing
// it commits the winning vehicle's proposed stoplist.
func TestSubmitAndExecute_HappyPath(t *testing.T) {
	f := newTestFleet(2)
	req, err := stoplist.NewTransportationRequest(types.NewID(), 0, space.Point2D{X: 0, Y: 0}, space.Point2D{X: 3, Y: 4}, stoplist.UnboundedTimeWindow, stoplist.UnboundedTimeWindow)
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}

	offer := f.SubmitTransportationRequest(context.Background(), req)
	if offer.Offer == nil {
		t.Fatalf("expected a feasible offer, got %+v", offer)
	}
	if offer.Offer.EstimatedInVehicleWindow.DropoffEAT != 5 {
		t.Errorf("dropoff EAT = %g, want 5", offer.Offer.EstimatedInVehicleWindow.DropoffEAT)
	}

	commit := f.ExecuteTransportationRequest(req.ID)
	if commit.Acceptance == nil {
		t.Fatalf("expected acceptance, got %+v", commit)
	}

	// A second commit of the same request id is now stale: the pending
	// offer was cleared by the first successful commit.
	second := f.ExecuteTransportationRequest(req.ID)
	if second.Rejection == nil {
		t.Fatalf("expected the second commit to be rejected as stale, got %+v", second)
	}
}

// TestFastForward_MergesEventsAcrossVehicles is the fleet-level half of
// spec.md §8 Scenario S5: two vehicles each have a pickup and a dropoff
// due before t, and the merged event stream must hold all four events in
// non-decreasing timestamp order.
func TestFastForward_MergesEventsAcrossVehicles(t *testing.T) {
	sp := space.NewEuclidean2D(1, 1000, 1000, 1)

	reqA := types.NewID()
	vA := vehicle.NewVehicleState[space.Point2D](types.NewID(), 4, space.Point2D{X: 0, Y: 0}, sp, dispatch.BruteForce[space.Point2D]{})
	solA := vA.HandleTransportationRequestSingleVehicle(mustRequest(t, reqA, space.Point2D{X: 0, Y: 0}, space.Point2D{X: 2, Y: 0}))
	if !solA.Feasible() {
		t.Fatalf("expected vehicle A to feasibly serve its request")
	}
	if err := vA.SelectNewStoplist(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqB := types.NewID()
	vB := vehicle.NewVehicleState[space.Point2D](types.NewID(), 4, space.Point2D{X: 10, Y: 0}, sp, dispatch.BruteForce[space.Point2D]{})
	solB := vB.HandleTransportationRequestSingleVehicle(mustRequest(t, reqB, space.Point2D{X: 10, Y: 0}, space.Point2D{X: 13, Y: 0}))
	if !solB.Feasible() {
		t.Fatalf("expected vehicle B to feasibly serve its request")
	}
	if err := vB.SelectNewStoplist(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := NewFleetState[space.Point2D](sp, []*vehicle.VehicleState[space.Point2D]{vA, vB})

	events, err := f.FastForward(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both vehicles' pickup+dropoff pairs occur within [0,10], four
	// events total, and the merge must be non-decreasing in timestamp.
	if len(events) != 4 {
		t.Fatalf("expected 4 merged events, got %d: %+v", len(events), events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			t.Fatalf("merged events not sorted by timestamp: %+v", events)
		}
	}
}

func mustRequest(t *testing.T, id types.ID, origin, destination space.Point2D) stoplist.TransportationRequest[space.Point2D] {
	t.Helper()
	req, err := stoplist.NewTransportationRequest(id, 0, origin, destination, stoplist.UnboundedTimeWindow, stoplist.UnboundedTimeWindow)
	if err != nil {
		t.Fatalf("unexpected error building request: %v", err)
	}
	return req
}
