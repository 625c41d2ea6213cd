package payloads

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkoutExportPayload asks the worker to write a JSON snapshot of one
// workout to object storage.
type WorkoutExportPayload struct {
	JobID       uuid.UUID `json:"job_id"`
	WorkoutID   int64     `json:"workout_id"`
	OwnerID     int64     `json:"owner_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// ObjectKey is where the snapshot for this job is stored.
func (p WorkoutExportPayload) ObjectKey() string {
	return fmt.Sprintf("exports/%d/%d/%s.json", p.OwnerID, p.WorkoutID, p.JobID)
}
