package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"city-bomber/internal/app"
	"city-bomber/internal/config"
)

func main() {
	cfg, err := config.LoadRelay()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{Relay: cfg}); err != nil {
		log.Fatalf("%v", err)
	}
}
