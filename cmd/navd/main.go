// README: Entry point; loads config, wires the navigation engine and serves the control API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wayfarer/internal/config"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/places"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/modules/trip"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Maps.APIKey == "" {
		log.Fatal("WAYFARER_MAPS_API_KEY is required")
	}
	provider, err := routing.NewGoogleProvider(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region)
	if err != nil {
		log.Fatalf("directions client: %v", err)
	}

	searcher, err := places.NewGoogleSearcher(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region)
	if err != nil {
		log.Fatalf("places client: %v", err)
	}

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, infra.FirebaseOptions{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			CheckRevoked:    cfg.Firebase.CheckRevoked,
		})
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
	}

	deps := service.Deps{
		Config:   cfg,
		DeviceID: types.ID(cfg.Device.ID),
		Provider: provider,
	}

	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
		geocoder, err := history.NewGoogleGeocoder(cfg.Maps.APIKey, cfg.Maps.Language)
		if err != nil {
			log.Fatalf("geocoding client: %v", err)
		}
		deps.History = history.NewService(history.NewRedisStore(redisClient, history.DefaultCapacity), geocoder)
		deps.Positions = location.NewStore(redisClient)
	}

	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		deps.Trips = trip.NewRecorder(trip.NewStore(dbPool))
	}

	engine := service.NewEngine(deps)
	go engine.Run(ctx)

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.NewRouter(httptransport.RouterDeps{
		Engine:   engine,
		Places:   places.NewService(searcher),
		Trips:    deps.Trips,
		Verifier: verifier,
		DeviceID: cfg.Device.ID,
	}))
	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
