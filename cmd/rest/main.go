package main

import (
	"context"
	"log"

	"ai-salesagent-be/internal/bootstrap"
	"ai-salesagent-be/internal/config"
	"ai-salesagent-be/internal/server"
	"ai-salesagent-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Event Log Service...")
		if err := container.EventLogService.Consume(context.Background()); err != nil {
			log.Printf("Background Event Log Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
