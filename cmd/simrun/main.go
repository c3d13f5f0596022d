// README: Headless scenario runner; drives a FleetState through a
// generated request stream and prints a summary, grounded on
// fweilun-Ark/cmd/bench/main.go's flag-config-then-run-then-summarize
// shape (there: HTTP/DB/Redis checks; here: one simulation run).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	summary, err := RunScenario(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scenario failed:", err)
		os.Exit(1)
	}

	fmt.Println("\n== Summary ==")
	fmt.Printf("stops=%d offers=%d acceptances=%d rejections=%d final_time=%.2f\n",
		summary.Stops, summary.Offers, summary.Acceptances, summary.Rejections, summary.FinalTime)
}

// Config parametrises one scenario run, the simulator's analogue to
// bench's Config (there: base URL/DSN/Redis addr; here: space/fleet/
// generator parameters).
type Config struct {
	NumVehicles       int
	SeatCapacity      int
	SpaceKind         string
	DispatcherKind    string
	MaxRelativeDetour float64
	Velocity          float64
	MaxX, MaxY        float64
	Seed              int64
	ArrivalRate       float64
	TCutoff           float64
	Timeout           time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.IntVar(&cfg.NumVehicles, "vehicles", envOrDefaultInt("SIMRUN_VEHICLES", 10), "number of vehicles")
	flag.IntVar(&cfg.SeatCapacity, "seats", envOrDefaultInt("SIMRUN_SEATS", 4), "seats per vehicle")
	flag.StringVar(&cfg.SpaceKind, "space", envOrDefault("SIMRUN_SPACE", "euclidean"), "euclidean or manhattan")
	flag.StringVar(&cfg.DispatcherKind, "dispatcher", envOrDefault("SIMRUN_DISPATCHER", "bruteforce"), "bruteforce or ellipse")
	flag.Float64Var(&cfg.MaxRelativeDetour, "max-relative-detour", envOrDefaultFloat("SIMRUN_MAX_RELATIVE_DETOUR", 0.5), "ellipse dispatcher detour bound")
	flag.Float64Var(&cfg.Velocity, "velocity", envOrDefaultFloat("SIMRUN_VELOCITY", 1.0), "space velocity")
	flag.Float64Var(&cfg.MaxX, "max-x", envOrDefaultFloat("SIMRUN_MAX_X", 100.0), "space width")
	flag.Float64Var(&cfg.MaxY, "max-y", envOrDefaultFloat("SIMRUN_MAX_Y", 100.0), "space height")
	flag.Int64Var(&cfg.Seed, "seed", int64(envOrDefaultInt("SIMRUN_SEED", 42)), "random seed")
	flag.Float64Var(&cfg.ArrivalRate, "rate", envOrDefaultFloat("SIMRUN_RATE", 0.5), "requests per simulated second")
	flag.Float64Var(&cfg.TCutoff, "t-cutoff", envOrDefaultFloat("SIMRUN_T_CUTOFF", 500.0), "simulated seconds to run")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("SIMRUN_TIMEOUT", 60*time.Second), "wall-clock timeout")
	flag.Parse()
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
