package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/GoArmGo/WorkoutTracker/internal/cli"
)

func main() {
	// bootstrap logger, used until the configured one exists
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		bootstrapLogger.Error("workoutd failed", "error", err)
		os.Exit(1)
	}
}
