package space

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	gmaps "googlemaps.github.io/maps"
)

// RoadNetworkSpace is the optional, pluggable road-network TransportSpace
// spec.md §1's Non-goals anticipate ("only the pluggable interface is
// specified"): it resolves travel time via the Google Maps Directions API,
// grounded on internal/maps/route_service.go's GetTravelEstimate, and falls
// back to a straight-line Euclidean2D estimate scaled by DetourFactor when
// the API call fails or is rate-limited, so the space stays total even
// under network failure — callers of TransportSpace never see an error.
type RoadNetworkSpace struct {
	client       *gmaps.Client
	fallback     *Euclidean2D
	detourFactor float64
	cacheCap     int

	mu    sync.Mutex
	lru   *list.List
	cache map[[2]Point2D]*list.Element
}

type roadCacheEntry struct {
	key [2]Point2D
	sec float64
}

// NewRoadNetworkSpace constructs a RoadNetworkSpace. fallbackVelocity and
// detourFactor parameterise the straight-line fallback used whenever the
// Maps API is unavailable.
func NewRoadNetworkSpace(apiKey string, fallbackVelocity, detourFactor float64, cacheCap int) (*RoadNetworkSpace, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &RoadNetworkSpace{
		client:       client,
		fallback:     NewEuclidean2D(fallbackVelocity, 1, 1, 1),
		detourFactor: detourFactor,
		cacheCap:     cacheCap,
		lru:          list.New(),
		cache:        make(map[[2]Point2D]*list.Element),
	}, nil
}

// D reports distance in the same units as T*velocity; since Directions
// only gives us travel time directly, D is derived from T at the
// fallback's nominal velocity.
func (s *RoadNetworkSpace) D(u, v Point2D) float64 {
	return s.T(u, v) * s.fallback.Velocity
}

func (s *RoadNetworkSpace) T(u, v Point2D) float64 {
	if u == v {
		return 0
	}
	if sec, ok := s.cached(u, v); ok {
		return sec
	}
	sec, err := s.queryDirections(u, v)
	if err != nil {
		return s.fallback.T(u, v) * s.detourFactor
	}
	s.store(u, v, sec)
	return sec
}

func (s *RoadNetworkSpace) InterpDist(u, v Point2D, distToDest float64) (Point2D, float64) {
	return s.fallback.InterpDist(u, v, distToDest)
}

func (s *RoadNetworkSpace) InterpTime(u, v Point2D, timeToDest float64) (Point2D, float64) {
	return s.fallback.InterpTime(u, v, timeToDest)
}

func (s *RoadNetworkSpace) RandomPoint() Point2D {
	return s.fallback.RandomPoint()
}

func (s *RoadNetworkSpace) queryDirections(u, v Point2D) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &gmaps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", u.X, u.Y),
		Destination: fmt.Sprintf("%f,%f", v.X, v.Y),
		Mode:        gmaps.TravelModeDriving,
	}
	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, err
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}
	return routes[0].Legs[0].Duration.Seconds(), nil
}

func (s *RoadNetworkSpace) cached(u, v Point2D) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]Point2D{u, v}
	el, ok := s.cache[key]
	if !ok {
		return 0, false
	}
	s.lru.MoveToFront(el)
	return el.Value.(*roadCacheEntry).sec, true
}

func (s *RoadNetworkSpace) store(u, v Point2D, sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]Point2D{u, v}
	el := s.lru.PushFront(&roadCacheEntry{key: key, sec: sec})
	s.cache[key] = el
	for s.lru.Len() > s.cacheCap {
		back := s.lru.Back()
		if back == nil {
			break
		}
		evicted := back.Value.(*roadCacheEntry)
		delete(s.cache, evicted.key)
		s.lru.Remove(back)
	}
}
