// Package main is the entry point for the warm CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/warm/cmd/warm/commands"
	"go.trai.ch/warm/internal/adapters/config"
	"go.trai.ch/warm/internal/app"
	_ "go.trai.ch/warm/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer components.Telemetry.Close() //nolint:errcheck // Best effort flush on exit

	cli := commands.New(components.App)
	cli.SetConfigHook(func(path string) {
		if loader, ok := components.ConfigLoader.(*config.FileConfigLoader); ok {
			loader.Filename = path
		}
	})
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
