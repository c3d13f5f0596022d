// README: live vehicle-position publishing to Redis GEO, for a dashboard
// or map client to poll nearby vehicles without touching the simulation
// core directly. See SPEC_FULL.md §2 (DOMAIN STACK).
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ridepool/internal/types"
)

const (
	vehicleGeoKeyPrefix = "telemetry:run:%s:vehicles"
	positionTTL         = 24 * time.Hour
)

// Publisher writes vehicle positions into a per-run Redis GEO set,
// grounded on fweilun-Ark/internal/modules/matching/store.go's
// driverGeoKey pattern (there: candidate drivers available for
// dispatch; here: every vehicle's current simulated position, refreshed
// on each FastForward).
type Publisher struct {
	redis *redis.Client
}

// NewPublisher wraps an existing Redis client, matching
// internal/infra/redis.go's NewRedis + every module's NewStore(client)
// constructor convention (dependency injected, not dialed internally).
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{redis: client}
}

// VehiclePosition is one vehicle's current location, reported in WGS84
// degrees — the boundary type types.Point exists for, since the
// simulation core operates on the abstract Loc type, not lat/lng.
type VehiclePosition struct {
	VehicleID types.ID
	Position  types.Point
}

// PublishPositions overwrites the run's entire GEO set with the given
// snapshot of vehicle positions, pipelined in one round trip the way
// Store.RecordDispatch pipelines its Set+SAdd+Expire calls.
func (p *Publisher) PublishPositions(ctx context.Context, runID types.ID, positions []VehiclePosition) error {
	key := vehicleGeoKey(runID)
	if len(positions) == 0 {
		return p.redis.Del(ctx, key).Err()
	}

	locations := make([]*redis.GeoLocation, len(positions))
	for i, pos := range positions {
		locations[i] = &redis.GeoLocation{
			Name:      string(pos.VehicleID),
			Longitude: pos.Position.Lng,
			Latitude:  pos.Position.Lat,
		}
	}

	pipe := p.redis.Pipeline()
	pipe.Del(ctx, key)
	pipe.GeoAdd(ctx, key, locations...)
	pipe.Expire(ctx, key, positionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// NearbyVehicles reports every vehicle of runID within radiusKm of center,
// nearest first, for a dashboard's "vehicles near this point" query.
func (p *Publisher) NearbyVehicles(ctx context.Context, runID types.ID, center types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := p.redis.GeoSearch(ctx, vehicleGeoKey(runID), &redis.GeoSearchQuery{
		Longitude:  center.Lng,
		Latitude:   center.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}

// ClearRun removes a run's vehicle-position set entirely, called when a
// simulation run ends.
func (p *Publisher) ClearRun(ctx context.Context, runID types.ID) error {
	return p.redis.Del(ctx, vehicleGeoKey(runID)).Err()
}

func vehicleGeoKey(runID types.ID) string {
	return fmt.Sprintf(vehicleGeoKeyPrefix, string(runID))
}
