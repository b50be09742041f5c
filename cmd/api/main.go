// Package main provides the main entry point for the RecipeWiz API server
package main

import (
	"flag"

	"go.uber.org/fx"

	"github.com/recipewiz/backend/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", "", "configuration file (defaults to ./config.yaml if present)")
	flag.Parse()

	// Run blocks until SIGINT/SIGTERM or a server failure, then stops
	// every component in reverse start order.
	fx.New(
		fx.Supply(container.ConfigPath(*configPath)),
		container.Module,
	).Run()
}
