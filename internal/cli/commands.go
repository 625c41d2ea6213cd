package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoArmGo/WorkoutTracker/internal/app"
)

func newServerCommand(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API until SIGINT or SIGTERM.

Pending migrations are applied first unless AUTO_MIGRATE=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, build, app.ModeServer, func(a *app.App) error {
				return a.RunServer(ctx)
			})
		},
	}
}

func newWorkerCommand(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume workout export jobs",
		Long:  "Consume workout export jobs from RabbitMQ and write snapshots to object storage.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, build, app.ModeWorker, func(a *app.App) error {
				return a.RunWorker(ctx)
			})
		},
	}
}

func newMigrateCommand(build builder) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down>",
		Short: "Apply or roll back the database schema",
		Example: `  workoutd migrate up
  DB_DRIVER=sqlite DATABASE_URL=./dev.db workoutd migrate down`,
		ValidArgs: []string{"up", "down"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), build, app.ModeAdmin, func(a *app.App) error {
				if err := a.Migrate(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
				return nil
			})
		},
	}
}

type seedOptions struct {
	File  string
	Email string
}

func newSeedCommand(build builder) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import workout types and exercises from a YAML catalog",
		Long: `Import workout types and exercises from a YAML catalog for an existing user.

Entries whose names the user already has are skipped.`,
		Example: "  workoutd seed --file catalog.yaml --email alice@example.com",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), build, app.ModeAdmin, func(a *app.App) error {
				res, err := a.Seed(cmd.Context(), opts.File, opts.Email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "workout types created: %d, exercises created: %d, skipped: %d\n",
					res.WorkoutTypesCreated, res.ExercisesCreated, res.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path to the YAML catalog (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email of the user who will own the entries (required)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
