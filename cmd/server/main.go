package main

import (
	"context"
	"log"

	"github.com/KhoaTranProgrammer/Common-Topics/app"
	"github.com/KhoaTranProgrammer/Common-Topics/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Logs.Apply()

	h := &app.Handlers{GamesDir: cfg.GamesDir, Timeout: app.RequestTimeout}

	// The engine is optional: without it only /tournament is served.
	if cfg.Engine.Path != "" {
		p, err := app.OpenPipeline(context.Background(), cfg, false)
		if err != nil {
			log.Fatalf("failed to start engine: %v", err)
		}
		defer p.Close()
		h.Evaluator = p.Evaluator
	}

	guard, err := app.NewGuard(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to set up auth: %v", err)
	}

	router := app.NewRouter(h, guard)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
