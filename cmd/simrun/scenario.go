// README: Scenario assembly: builds a space, dispatcher, fleet, and
// Poisson request stream, then drives FleetState.Simulate to completion.
package main

import (
	"context"

	"ridepool/internal/dispatch"
	"ridepool/internal/fleet"
	"ridepool/internal/requestgen"
	"ridepool/internal/space"
	"ridepool/internal/types"
	"ridepool/internal/vehicle"
)

// Summary tallies the events a scenario run produced.
type Summary struct {
	Stops       int
	Offers      int
	Acceptances int
	Rejections  int
	FinalTime   float64
}

// RunScenario builds the fleet and request generator described by cfg and
// drives them to completion via FleetState.Simulate.
func RunScenario(ctx context.Context, cfg Config) (Summary, error) {
	sp := buildSpace(cfg)
	d := buildDispatcher(cfg)

	vehicles := make([]*vehicle.VehicleState[space.Point2D], cfg.NumVehicles)
	for i := range vehicles {
		vehicles[i] = vehicle.NewVehicleState[space.Point2D](types.NewID(), cfg.SeatCapacity, sp.RandomPoint(), sp, d)
	}

	fs := fleet.NewFleetState[space.Point2D](sp, vehicles)
	gen := requestgen.NewPoissonGenerator[space.Point2D](sp, cfg.ArrivalRate, cfg.Seed)

	events, err := fs.Simulate(ctx, gen, cfg.TCutoff)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, e := range events {
		switch {
		case e.Stop != nil:
			s.Stops++
		case e.Offer != nil:
			s.Offers++
		case e.Acceptance != nil:
			s.Acceptances++
		case e.Rejection != nil:
			s.Rejections++
		}
	}
	s.FinalTime = fs.CurrentTime()
	return s, nil
}

func buildSpace(cfg Config) space.TransportSpace[space.Point2D] {
	if cfg.SpaceKind == "manhattan" {
		return space.NewManhattan2D(cfg.Velocity, cfg.MaxX, cfg.MaxY, cfg.Seed)
	}
	return space.NewEuclidean2D(cfg.Velocity, cfg.MaxX, cfg.MaxY, cfg.Seed)
}

func buildDispatcher(cfg Config) dispatch.Dispatcher[space.Point2D] {
	if cfg.DispatcherKind == "ellipse" {
		return dispatch.Ellipse[space.Point2D]{MaxRelativeDetour: cfg.MaxRelativeDetour}
	}
	return dispatch.BruteForce[space.Point2D]{}
}
