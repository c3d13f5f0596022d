// README: Simulation run persistence, backed by PostgreSQL. A run is a
// header row plus an append-only log of stop/request events, replayable
// in timestamp order. Grounded on
// fweilun-Ark/internal/modules/order/store.go. See migrations/0001_init.sql.
package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepool/internal/simevents"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// ErrNotFound mirrors order.ErrNotFound's sentinel-error convention.
var ErrNotFound = errors.New("persistence: run not found")

// Run is a simulation run's header: the space/dispatcher configuration
// it was started with, for later reproduction or display.
type Run struct {
	ID             types.ID
	SpaceKind      string
	DispatcherKind string
	SeatCapacity   int
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateRun inserts the run header row.
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO runs (id, space_kind, dispatcher_kind, seat_capacity)
		VALUES ($1, $2, $3, $4)`,
		string(r.ID), r.SpaceKind, r.DispatcherKind, r.SeatCapacity,
	)
	return err
}

// GetRun fetches a run header by id.
func (s *Store) GetRun(ctx context.Context, id types.ID) (Run, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, space_kind, dispatcher_kind, seat_capacity
		FROM runs WHERE id = $1`, string(id),
	)
	var r Run
	err := row.Scan(&r.ID, &r.SpaceKind, &r.DispatcherKind, &r.SeatCapacity)
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// EndRun stamps ended_at, used once a simulation has no more requests or
// stops to process.
func (s *Store) EndRun(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `UPDATE runs SET ended_at = now() WHERE id = $1`, string(id))
	return err
}

// AddVehicle records one of a run's vehicles, for a later replay to know
// how many vehicles (and what capacity) to seed.
func (s *Store) AddVehicle(ctx context.Context, runID, vehicleID types.ID, seatCapacity int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO run_vehicles (run_id, vehicle_id, seat_capacity)
		VALUES ($1, $2, $3)`,
		string(runID), string(vehicleID), seatCapacity,
	)
	return err
}

// AppendStopEvent logs one serviced stop.
func (s *Store) AppendStopEvent(ctx context.Context, runID types.ID, e simevents.StopEvent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO stop_events (run_id, vehicle_id, request_id, action, timestamp)
		VALUES ($1, $2, $3, $4, $5)`,
		string(runID), string(e.VehicleID), string(e.RequestID), string(e.Action), e.Timestamp,
	)
	return err
}

// AppendRequestEvent logs exactly one of an offer, rejection, or
// acceptance, matching simevents.RequestEvent's sum-type shape.
func (s *Store) AppendRequestEvent(ctx context.Context, runID types.ID, e simevents.RequestEvent) error {
	switch {
	case e.Offer != nil:
		_, err := s.db.Exec(ctx, `
			INSERT INTO request_events (run_id, request_id, event_type, timestamp, pickup_eat, dropoff_eat, comment)
			VALUES ($1, $2, 'offer', $3, $4, $5, $6)`,
			string(runID), string(e.Offer.RequestID), e.Offer.Timestamp,
			e.Offer.EstimatedInVehicleWindow.PickupEAT, e.Offer.EstimatedInVehicleWindow.DropoffEAT, e.Offer.Comment,
		)
		return err
	case e.Rejection != nil:
		_, err := s.db.Exec(ctx, `
			INSERT INTO request_events (run_id, request_id, event_type, timestamp, comment)
			VALUES ($1, $2, 'rejection', $3, $4)`,
			string(runID), string(e.Rejection.RequestID), e.Rejection.Timestamp, e.Rejection.Comment,
		)
		return err
	case e.Acceptance != nil:
		_, err := s.db.Exec(ctx, `
			INSERT INTO request_events (run_id, request_id, event_type, timestamp, comment)
			VALUES ($1, $2, 'acceptance', $3, $4)`,
			string(runID), string(e.Acceptance.RequestID), e.Acceptance.Timestamp, e.Acceptance.Comment,
		)
		return err
	default:
		return errors.New("persistence: empty RequestEvent")
	}
}

// ListStopEvents replays a run's stop log in timestamp order.
func (s *Store) ListStopEvents(ctx context.Context, runID types.ID) ([]simevents.StopEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vehicle_id, request_id, action, timestamp
		FROM stop_events WHERE run_id = $1 ORDER BY timestamp, vehicle_id`, string(runID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []simevents.StopEvent
	for rows.Next() {
		var e simevents.StopEvent
		var action string
		if err := rows.Scan(&e.VehicleID, &e.RequestID, &action, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Action = stoplist.StopAction(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
