package main

import (
	"context"
	"log"

	"noteshare-be/internal/bootstrap"
	"noteshare-be/internal/config"
	"noteshare-be/internal/server"
	"noteshare-be/internal/tracer"
	"noteshare-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background: search-vector indexer.
	if err := container.IndexerService.Start(context.Background()); err != nil {
		log.Printf("Background indexer error: %v", err)
	}

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
