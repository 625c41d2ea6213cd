package ports

import (
	"context"

	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
)

// WorkoutExportPublisher queues workout export jobs. Used by the HTTP layer.
type WorkoutExportPublisher interface {
	PublishWorkoutExport(ctx context.Context, payload payloads.WorkoutExportPayload) error
}

// WorkoutExportConsumer delivers queued export jobs to the worker.
type WorkoutExportConsumer interface {
	// StartConsumingWorkoutExports listens on the queue and calls handler
	// for every message until ctx is done.
	StartConsumingWorkoutExports(ctx context.Context, handler func(context.Context, payloads.WorkoutExportPayload) error) error
}
