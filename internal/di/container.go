package di

import (
	"context"
	"fmt"

	"github.com/GoArmGo/WorkoutTracker/internal/adapter/storage/minio"
	"github.com/GoArmGo/WorkoutTracker/internal/app"
	"github.com/GoArmGo/WorkoutTracker/internal/auth"
	"github.com/GoArmGo/WorkoutTracker/internal/catalog"
	"github.com/GoArmGo/WorkoutTracker/internal/config"
	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/database/client"
	"github.com/GoArmGo/WorkoutTracker/internal/database/storage"
	"github.com/GoArmGo/WorkoutTracker/internal/handler"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/rabbitmq"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

// BuildApp loads the configuration and wires every dependency for mode.
// MinIO and RabbitMQ are connected only in server and worker modes, and
// only when configured.
func BuildApp(ctx context.Context, mode app.Mode) (*app.App, error) {
	// 1. configuration and logger
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat, "mode", mode)

	// 2. database
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. storages
	userStorage := storage.NewGormUserStorage(dbClient.Gorm, slogger)
	workoutTypeStorage := storage.NewWorkoutTypeStorage(dbClient.DB, slogger)
	exerciseStorage := storage.NewExerciseStorage(dbClient.DB, slogger)
	workoutStorage := storage.NewWorkoutStorage(dbClient.DB, slogger)

	// 4. credentials
	creds, err := auth.NewCredentialStore(auth.Config{
		SigningKey: []byte(cfg.JWTSecret),
		TokenTTL:   cfg.AccessTokenTTL,
		BcryptCost: cfg.BcryptCost,
		Policy:     auth.DefaultPolicy(),
	})
	if err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("build credential store: %w", err)
	}
	resolver := auth.NewResolver(creds, userStorage)

	// 5. reconcile policy
	policy, err := usecase.ParseUnknownIDPolicy(cfg.ReconcileUnknownID)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	// 6. optional external services, dialed once nothing else can fail
	var (
		fileStorage ports.FileStorage
		publisher   ports.WorkoutExportPublisher
		consumer    ports.WorkoutExportConsumer
	)
	if mode != app.ModeAdmin {
		if cfg.MinioEnabled() {
			minioClient, err := minio.NewMinioClient(ctx, cfg, slogger)
			if err != nil {
				_ = dbClient.Close()
				return nil, err
			}
			fileStorage = minioClient
		} else {
			slogger.Warn("MinIO is not configured, icon and export endpoints are disabled")
		}

		if cfg.RabbitMQEnabled() {
			rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
			if err != nil {
				_ = dbClient.Close()
				return nil, err
			}
			publisher = rabbitMQClient
			consumer = rabbitMQClient
		} else {
			slogger.Warn("RabbitMQ is not configured, workout export is disabled")
		}
	}

	// 7. use cases
	accountUseCase := usecase.NewAccountUseCase(userStorage, creds, slogger)
	workoutTypeUseCase := usecase.NewWorkoutTypeUseCase(workoutTypeStorage, fileStorage, slogger)
	exerciseUseCase := usecase.NewExerciseUseCase(exerciseStorage, slogger)
	workoutUseCase := usecase.NewWorkoutUseCase(workoutStorage, usecase.NewReconciler(policy), publisher, fileStorage, slogger)

	// 8. HTTP; the limiter bounds concurrent icon uploads
	uploadLimiter := make(chan struct{}, cfg.UploadConcurrency)
	h := handler.NewHandler(
		accountUseCase,
		workoutTypeUseCase,
		exerciseUseCase,
		workoutUseCase,
		uploadLimiter,
		cfg.MaxIconBytes,
		slogger,
	)

	application := app.NewApp(cfg, slogger, app.Deps{
		DB:              dbClient,
		Router:          handler.NewRouter(h, resolver, cfg.RequestTimeout),
		Accounts:        accountUseCase,
		Workouts:        workoutUseCase,
		Seeder:          catalog.NewSeeder(workoutTypeUseCase, exerciseUseCase, slogger),
		ExportPublisher: publisher,
		ExportConsumer:  consumer,
		Files:           fileStorage,
	})

	slogger.Info("dependencies initialized",
		"db_driver", dbClient.Driver,
		"object_storage", fileStorage != nil,
		"export_queue", publisher != nil,
	)
	return application, nil
}
