// FILE: cmd/alteonparse/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// Version can be set during build with -ldflags
var version = "dev"

// The optional .env must be loaded before the flag inits read their
// ALTEON_* defaults; package variable initializers run ahead of every
// init function. Absence of the file is fine.
var _ = godotenv.Load()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
