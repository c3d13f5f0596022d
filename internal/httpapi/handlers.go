// README: Route handlers for the simulation HTTP surface. Request/response
// shapes, JSON error mapping, and the errorResponse convention are ported
// from fweilun-Ark/internal/http/handlers/base_handler.go and
// order_handler.go onto the fleet/stoplist/simevents domain types.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/simevents"
	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/telemetry"
	"ridepool/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

type createRunRequest struct {
	NumVehicles       int     `json:"num_vehicles"`
	SeatCapacity      int     `json:"seat_capacity"`
	SpaceKind         string  `json:"space_kind"`
	DispatcherKind    string  `json:"dispatcher_kind"`
	MaxRelativeDetour float64 `json:"max_relative_detour"`
	Velocity          float64 `json:"velocity"`
	MaxX              float64 `json:"max_x"`
	MaxY              float64 `json:"max_y"`
	Seed              int64   `json:"seed"`
}

// CreateRun starts a new simulation run and returns its id.
func (s *Server) CreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.NumVehicles <= 0 {
		writeError(c, http.StatusBadRequest, "num_vehicles must be > 0")
		return
	}
	if req.SeatCapacity <= 0 {
		req.SeatCapacity = 4
	}
	if req.Velocity <= 0 {
		req.Velocity = 1
	}
	if req.MaxX <= 0 {
		req.MaxX = 100
	}
	if req.MaxY <= 0 {
		req.MaxY = 100
	}

	r := newRun(req)
	runID := types.NewID()

	s.mu.Lock()
	s.runs[runID] = r
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.CreateRun(c.Request.Context(), toPersistedRun(runID, r)); err != nil {
			writeError(c, http.StatusInternalServerError, "persist run: "+err.Error())
			return
		}
		for _, v := range r.fleet.Vehicles {
			if err := s.store.AddVehicle(c.Request.Context(), runID, v.ID, r.seatCapacity); err != nil {
				writeError(c, http.StatusInternalServerError, "persist vehicle: "+err.Error())
				return
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{"run_id": runID, "num_vehicles": req.NumVehicles})
}

type point2DRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type timeWindowRequest struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type submitRequestRequest struct {
	RequestID      string            `json:"request_id"`
	CreationTime   float64           `json:"creation_time"`
	Origin         point2DRequest    `json:"origin"`
	Destination    point2DRequest    `json:"destination"`
	PickupWindow   timeWindowRequest `json:"pickup_window"`
	DeliveryWindow timeWindowRequest `json:"delivery_window"`
}

// SubmitRequest quotes a new transportation request against every vehicle
// in the named run and records the winning offer as pending.
func (s *Server) SubmitRequest(c *gin.Context) {
	r, ok := s.getRun(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "run not found")
		return
	}

	var body submitRequestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	reqID := types.ID(body.RequestID)
	if reqID == "" {
		reqID = types.NewID()
	}

	tr, err := stoplist.NewTransportationRequest[space.Point2D](
		reqID, body.CreationTime,
		space.Point2D{X: body.Origin.X, Y: body.Origin.Y},
		space.Point2D{X: body.Destination.X, Y: body.Destination.Y},
		stoplist.TimeWindow{Min: body.PickupWindow.Min, Max: body.PickupWindow.Max},
		stoplist.TimeWindow{Min: body.DeliveryWindow.Min, Max: body.DeliveryWindow.Max},
	)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	event := r.fleet.SubmitTransportationRequest(c.Request.Context(), tr)
	s.persistRequestEvent(c.Request.Context(), types.ID(c.Param("id")), event)
	c.JSON(http.StatusOK, toRequestEventResponse(event))
}

// CommitRequest executes the pending offer for request_id, if it is still
// current.
func (s *Server) CommitRequest(c *gin.Context) {
	r, ok := s.getRun(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "run not found")
		return
	}

	requestID := types.ID(c.Param("request_id"))
	event := r.fleet.ExecuteTransportationRequest(requestID)
	s.persistRequestEvent(c.Request.Context(), types.ID(c.Param("id")), event)
	c.JSON(http.StatusOK, toRequestEventResponse(event))
}

type fastForwardRequest struct {
	T float64 `json:"t"`
}

// FastForward advances the run's fleet to t and publishes the resulting
// vehicle positions if telemetry is configured.
func (s *Server) FastForward(c *gin.Context) {
	r, ok := s.getRun(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "run not found")
		return
	}

	var body fastForwardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	events, err := r.fleet.FastForward(c.Request.Context(), body.T)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil {
		runID := types.ID(c.Param("id"))
		for _, e := range events {
			if err := s.store.AppendStopEvent(c.Request.Context(), runID, e); err != nil {
				writeError(c, http.StatusInternalServerError, "persist stop event: "+err.Error())
				return
			}
		}
	}

	if s.publisher != nil {
		s.publishPositions(c.Request.Context(), types.ID(c.Param("id")), r)
	}

	resp := make([]stopEventResponse, len(events))
	for i, e := range events {
		resp[i] = toStopEventResponse(e)
	}
	c.JSON(http.StatusOK, gin.H{"events": resp, "current_time": r.fleet.CurrentTime()})
}

// ListVehicles reports every vehicle's current position in the named run.
func (s *Server) ListVehicles(c *gin.Context) {
	r, ok := s.getRun(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "run not found")
		return
	}

	resp := make([]vehiclePositionResponse, len(r.fleet.Vehicles))
	for i, v := range r.fleet.Vehicles {
		pos := v.CurrentPosition()
		resp[i] = vehiclePositionResponse{VehicleID: v.ID, X: pos.X, Y: pos.Y}
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": resp})
}

type vehiclePositionResponse struct {
	VehicleID types.ID `json:"vehicle_id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
}

type stopEventResponse struct {
	Timestamp float64  `json:"timestamp"`
	VehicleID types.ID `json:"vehicle_id"`
	RequestID types.ID `json:"request_id"`
	Action    string   `json:"action"`
}

func toStopEventResponse(e simevents.StopEvent) stopEventResponse {
	return stopEventResponse{
		Timestamp: e.Timestamp,
		VehicleID: e.VehicleID,
		RequestID: e.RequestID,
		Action:    string(e.Action),
	}
}

func toRequestEventResponse(e simevents.RequestEvent) gin.H {
	switch {
	case e.Offer != nil:
		return gin.H{
			"type":        "offer",
			"request_id":  e.Offer.RequestID,
			"timestamp":   e.Offer.Timestamp,
			"pickup_eat":  e.Offer.EstimatedInVehicleWindow.PickupEAT,
			"dropoff_eat": e.Offer.EstimatedInVehicleWindow.DropoffEAT,
			"comment":     e.Offer.Comment,
		}
	case e.Acceptance != nil:
		return gin.H{
			"type":       "acceptance",
			"request_id": e.Acceptance.RequestID,
			"timestamp":  e.Acceptance.Timestamp,
			"comment":    e.Acceptance.Comment,
		}
	case e.Rejection != nil:
		return gin.H{
			"type":       "rejection",
			"request_id": e.Rejection.RequestID,
			"timestamp":  e.Rejection.Timestamp,
			"comment":    e.Rejection.Comment,
		}
	default:
		return gin.H{"type": "none"}
	}
}

func (s *Server) persistRequestEvent(ctx context.Context, runID types.ID, e simevents.RequestEvent) {
	if s.store == nil {
		return
	}
	_ = s.store.AppendRequestEvent(ctx, runID, e)
}

func (s *Server) publishPositions(ctx context.Context, runID types.ID, r *run) {
	positions := make([]telemetry.VehiclePosition, len(r.fleet.Vehicles))
	for i, v := range r.fleet.Vehicles {
		pos := v.CurrentPosition()
		positions[i] = telemetry.VehiclePosition{
			VehicleID: v.ID,
			Position:  types.Point{Lat: pos.X, Lng: pos.Y},
		}
	}
	_ = s.publisher.PublishPositions(ctx, runID, positions)
}
