// Package cli defines the workoutd command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoArmGo/WorkoutTracker/internal/app"
	"github.com/GoArmGo/WorkoutTracker/internal/di"
)

// builder constructs the application; tests swap it out.
type builder func(ctx context.Context, mode app.Mode) (*app.App, error)

// NewRootCommand creates the workoutd root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(di.BuildApp)
}

func newRootCommand(build builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workoutd",
		Short:         "Workout tracker backend",
		Long:          "HTTP API, export worker and admin commands for the workout tracker.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServerCommand(build))
	cmd.AddCommand(newWorkerCommand(build))
	cmd.AddCommand(newMigrateCommand(build))
	cmd.AddCommand(newSeedCommand(build))

	return cmd
}

// withApp builds the app for mode, runs fn and releases its resources.
func withApp(ctx context.Context, build builder, mode app.Mode, fn func(*app.App) error) error {
	a, err := build(ctx, mode)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	runErr := fn(a)
	if err := a.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
