// README: Server owns every in-memory simulation run exposed over HTTP,
// plus the optional persistence/telemetry collaborators each run's events
// are mirrored to. Grounded on fweilun-Ark/internal/http/server.go's
// ServerDeps-and-Routes() shape, adapted from its fixed module-service set
// to a dynamic map of simulation runs.
package httpapi

import (
	"sync"

	"ridepool/internal/auth"
	"ridepool/internal/dispatch"
	"ridepool/internal/fleet"
	"ridepool/internal/persistence"
	"ridepool/internal/space"
	"ridepool/internal/telemetry"
	"ridepool/internal/types"
	"ridepool/internal/vehicle"
)

// run bundles a live FleetState with the metadata needed to describe and
// persist it.
type run struct {
	fleet          *fleet.FleetState[space.Point2D]
	spaceKind      string
	dispatcherKind string
	seatCapacity   int
}

// ServerDeps are the Server's collaborators. Store and Publisher are
// optional: a nil Store disables event persistence, a nil Publisher
// disables position telemetry, matching the way the teacher's AI/Maps
// config fields are optional rather than envOrError'd.
type ServerDeps struct {
	Verifier  auth.TokenVerifier
	Store     *persistence.Store
	Publisher *telemetry.Publisher
}

// Server holds every run created via POST /runs for the lifetime of the
// process.
type Server struct {
	verifier  auth.TokenVerifier
	store     *persistence.Store
	publisher *telemetry.Publisher

	mu   sync.Mutex
	runs map[types.ID]*run
}

// NewServer wires a Server from its dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		verifier:  deps.Verifier,
		store:     deps.Store,
		publisher: deps.Publisher,
		runs:      make(map[types.ID]*run),
	}
}

func (s *Server) getRun(id types.ID) (*run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func buildDispatcher(kind string, maxRelativeDetour float64) dispatch.Dispatcher[space.Point2D] {
	if kind == "ellipse" {
		return dispatch.Ellipse[space.Point2D]{MaxRelativeDetour: maxRelativeDetour}
	}
	return dispatch.BruteForce[space.Point2D]{}
}

func buildSpace(kind string, velocity, maxX, maxY float64, seed int64) space.TransportSpace[space.Point2D] {
	if kind == "manhattan" {
		return space.NewManhattan2D(velocity, maxX, maxY, seed)
	}
	return space.NewEuclidean2D(velocity, maxX, maxY, seed)
}

func newRun(req createRunRequest) *run {
	sp := buildSpace(req.SpaceKind, req.Velocity, req.MaxX, req.MaxY, req.Seed)
	d := buildDispatcher(req.DispatcherKind, req.MaxRelativeDetour)

	vehicles := make([]*vehicle.VehicleState[space.Point2D], req.NumVehicles)
	for i := range vehicles {
		vehicles[i] = vehicle.NewVehicleState[space.Point2D](types.NewID(), req.SeatCapacity, sp.RandomPoint(), sp, d)
	}

	return &run{
		fleet:          fleet.NewFleetState[space.Point2D](sp, vehicles),
		spaceKind:      req.SpaceKind,
		dispatcherKind: req.DispatcherKind,
		seatCapacity:   req.SeatCapacity,
	}
}

func toPersistedRun(id types.ID, r *run) persistence.Run {
	return persistence.Run{
		ID:             id,
		SpaceKind:      r.spaceKind,
		DispatcherKind: r.dispatcherKind,
		SeatCapacity:   r.seatCapacity,
	}
}
