package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/companyhub/internal/server"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
