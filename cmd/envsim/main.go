package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/envsim/app"
	"github.com/Black-And-White-Club/envsim/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	runErr := application.Run(ctx)

	if err := application.Close(); err != nil {
		application.Observability.Logger.Error("Error during shutdown", "error", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
