// Command server runs the backend: it wires configuration, database,
// migrations and services, and serves until interrupted.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/tsuyanki/tsuyanki-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
