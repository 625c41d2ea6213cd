package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/WorkoutTracker/internal/catalog"
	"github.com/GoArmGo/WorkoutTracker/internal/config"
	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/database/client"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

// Mode selects which process BuildApp prepares.
type Mode string

const (
	ModeServer Mode = "server"
	ModeWorker Mode = "worker"
	// ModeAdmin is for one-shot commands (migrate, seed) that need only
	// the database.
	ModeAdmin Mode = "admin"
)

type App struct {
	Config          *config.Config
	logger          *slog.Logger
	db              *client.Client
	router          http.Handler
	accounts        usecase.AccountUseCase
	workouts        usecase.WorkoutUseCase
	seeder          *catalog.Seeder
	exportConsumer  ports.WorkoutExportConsumer // nil without RabbitMQ
	exportPublisher ports.WorkoutExportPublisher
	files           ports.FileStorage // nil without MinIO
}

// Deps is everything the container hands to NewApp.
type Deps struct {
	DB              *client.Client
	Router          http.Handler
	Accounts        usecase.AccountUseCase
	Workouts        usecase.WorkoutUseCase
	Seeder          *catalog.Seeder
	ExportPublisher ports.WorkoutExportPublisher
	ExportConsumer  ports.WorkoutExportConsumer
	Files           ports.FileStorage
}

func NewApp(cfg *config.Config, logger *slog.Logger, deps Deps) *App {
	return &App{
		Config:          cfg,
		logger:          logger,
		db:              deps.DB,
		router:          deps.Router,
		accounts:        deps.Accounts,
		workouts:        deps.Workouts,
		seeder:          deps.Seeder,
		exportConsumer:  deps.ExportConsumer,
		exportPublisher: deps.ExportPublisher,
		files:           deps.Files,
	}
}

// LoggerIns returns the application logger.
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// RunServer serves HTTP until ctx is cancelled.
func (a *App) RunServer(ctx context.Context) error {
	if a.Config.AutoMigrate {
		if err := a.db.MigrateUp(); err != nil {
			return err
		}
	}
	return runServer(ctx, a.Config, a.router, a.logger)
}

// RunWorker consumes export jobs until ctx is cancelled. It refuses to
// start without object storage so jobs stay queued instead of failing.
func (a *App) RunWorker(ctx context.Context) error {
	if a.exportConsumer == nil {
		return errors.New("worker mode needs RABBITMQ_URL")
	}
	if a.files == nil {
		return errors.New("worker mode needs MinIO (MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY)")
	}
	return runWorker(ctx, a.workouts, a.exportConsumer, a.logger)
}

// Migrate applies ("up") or rolls back ("down") the schema.
func (a *App) Migrate(direction string) error {
	switch direction {
	case "up":
		return a.db.MigrateUp()
	case "down":
		return a.db.MigrateDown()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}

// Seed imports the catalog at path for the user with the given email.
func (a *App) Seed(ctx context.Context, path, email string) (catalog.Result, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return catalog.Result{}, err
	}
	user, err := a.accounts.FindByEmail(ctx, email)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("find seed owner %q: %w", email, err)
	}
	return a.seeder.Seed(ctx, user.ID, cat)
}

// Shutdown closes every resource the app holds.
func (a *App) Shutdown() error {
	var errs []error

	// the rabbitmq client serves as both publisher and consumer
	closed := map[any]bool{}
	for _, c := range []any{a.exportPublisher, a.exportConsumer} {
		if c == nil || closed[c] {
			continue
		}
		closed[c] = true
		if closer, ok := c.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Error("shutdown finished with errors", "error", err)
		return err
	}
	a.logger.Info("application resources released")
	return nil
}
