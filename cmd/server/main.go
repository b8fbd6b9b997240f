package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/dkravtsov/shelfmark/internal/server"
	"github.com/dkravtsov/shelfmark/internal/server/config"
)

func main() {
	// optional; absent .env is fine
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
