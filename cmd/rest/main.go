package main

import (
	"context"
	"log"

	"medassist-be/internal/bootstrap"
	"medassist-be/internal/config"
	"medassist-be/internal/server"
	"medassist-be/internal/tracer"
	"medassist-be/pkg/database"
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

	// Background workers
	go func() {
		log.Println("Background: Starting enrichment consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting stuck-examination reconciler...")
		container.ReconcilerService.Run(context.Background())
	}()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
