// Command demo runs a customer lifecycle against the configured record store and event dispatchers.
//
// Configuration comes from the environment or a .env file in the working directory, see package config.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/ddd-toolkit-go/example/config"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/zapadapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := zapadapter.NewFromConfig(zapadapter.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, logger)

	stop()
	_ = logger.Sync()

	if err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}
