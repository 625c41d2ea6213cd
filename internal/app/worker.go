package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

// runWorker consumes export jobs and writes each snapshot to object storage.
func runWorker(
	ctx context.Context,
	workouts usecase.WorkoutUseCase,
	consumer ports.WorkoutExportConsumer,
	logger *slog.Logger,
) error {
	logger.Info("worker started, waiting for export jobs")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	messageHandler := func(ctx context.Context, payload payloads.WorkoutExportPayload) error {
		start := time.Now()
		url, err := workouts.ExportWorkout(ctx, payload)
		if err != nil {
			return err
		}
		logger.Info("export job done",
			"job_id", payload.JobID,
			"workout_id", payload.WorkoutID,
			"url", url,
			"queued_for_ms", start.Sub(payload.RequestedAt).Milliseconds(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	if err := consumer.StartConsumingWorkoutExports(workerCtx, messageHandler); err != nil {
		return fmt.Errorf("start export consumer: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping worker")
	return nil
}
