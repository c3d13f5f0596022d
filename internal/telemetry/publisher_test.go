package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"ridepool/internal/types"
)

// setupTestPublisher mirrors
// fweilun-Ark/internal/modules/order/order_test.go's setupTestStore:
// skip rather than fail when no live backend is configured.
func setupTestPublisher(t *testing.T) *Publisher {
	t.Helper()

	addr := os.Getenv("SIM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SIM_TEST_REDIS_ADDR not set; skipping Redis-backed telemetry tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	return NewPublisher(client)
}

func TestPublisher_PublishAndQueryNearby(t *testing.T) {
	p := setupTestPublisher(t)
	ctx := context.Background()
	runID := types.NewID()
	t.Cleanup(func() { _ = p.ClearRun(ctx, runID) })

	near := types.ID("near")
	far := types.ID("far")
	if err := p.PublishPositions(ctx, runID, []VehiclePosition{
		{VehicleID: near, Position: types.Point{Lat: 25.0330, Lng: 121.5654}},
		{VehicleID: far, Position: types.Point{Lat: 35.6762, Lng: 139.6503}},
	}); err != nil {
		t.Fatalf("PublishPositions: %v", err)
	}

	ids, err := p.NearbyVehicles(ctx, runID, types.Point{Lat: 25.0330, Lng: 121.5654}, 5)
	if err != nil {
		t.Fatalf("NearbyVehicles: %v", err)
	}
	if len(ids) != 1 || ids[0] != near {
		t.Fatalf("expected only %q within 5km, got %v", near, ids)
	}
}

func TestPublisher_PublishEmptyClearsSet(t *testing.T) {
	p := setupTestPublisher(t)
	ctx := context.Background()
	runID := types.NewID()
	t.Cleanup(func() { _ = p.ClearRun(ctx, runID) })

	if err := p.PublishPositions(ctx, runID, []VehiclePosition{
		{VehicleID: "v1", Position: types.Point{Lat: 1, Lng: 1}},
	}); err != nil {
		t.Fatalf("PublishPositions: %v", err)
	}
	if err := p.PublishPositions(ctx, runID, nil); err != nil {
		t.Fatalf("PublishPositions(nil): %v", err)
	}

	ids, err := p.NearbyVehicles(ctx, runID, types.Point{Lat: 1, Lng: 1}, 1000)
	if err != nil {
		t.Fatalf("NearbyVehicles: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set after clearing, got %v", ids)
	}
}
