// README: Entry point; loads config, wires the auth/persistence/telemetry
// collaborators, and starts the HTTP server. Grounded on
// fweilun-Ark/cmd/ark-api/main.go's config-then-wire-then-serve shape.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	simauth "ridepool/internal/auth"
	"ridepool/internal/config"
	"ridepool/internal/httpapi"
	"ridepool/internal/infra"
	"ridepool/internal/persistence"
	"ridepool/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var verifier simauth.TokenVerifier = simauth.NoopVerifier{}
	if cfg.Firebase.ProjectID != "" {
		verifier, err = simauth.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
	}

	var store *persistence.Store
	if dbPool, err := infra.NewDB(ctx, cfg.DB.DSN); err == nil {
		store = persistence.NewStore(dbPool)
	} else {
		log.Printf("persistence disabled: %v", err)
	}

	var publisher *telemetry.Publisher
	if cfg.Redis.Addr != "" {
		publisher = telemetry.NewPublisher(infra.NewRedis(cfg.Redis.Addr))
	}

	server := httpapi.NewServer(httpapi.ServerDeps{
		Verifier:  verifier,
		Store:     store,
		Publisher: publisher,
	})

	httpServer := &http.Server{Addr: cfg.HTTP.Addr, Handler: server.NewRouter()}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
