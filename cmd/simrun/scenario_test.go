package main

import (
	"context"
	"testing"
)

func TestRunScenario_ProducesEvents(t *testing.T) {
	cfg := Config{
		NumVehicles:    5,
		SeatCapacity:   4,
		SpaceKind:      "euclidean",
		DispatcherKind: "bruteforce",
		Velocity:       1,
		MaxX:           50,
		MaxY:           50,
		Seed:           7,
		ArrivalRate:    0.5,
		TCutoff:        100,
	}

	summary, err := RunScenario(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if summary.Offers+summary.Rejections == 0 {
		t.Fatal("expected at least one offer or rejection over 100 simulated seconds")
	}
	if summary.FinalTime <= 0 {
		t.Fatalf("expected fleet clock to advance, got %v", summary.FinalTime)
	}
}
