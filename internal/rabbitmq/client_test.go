package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
	"github.com/GoArmGo/WorkoutTracker/internal/messaging/payloads"
)

func TestProcessDelivery(t *testing.T) {
	payload := payloads.WorkoutExportPayload{
		JobID:       uuid.New(),
		WorkoutID:   7,
		OwnerID:     3,
		RequestedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		handlerErr  error
		want        deliveryAction
	}{
		{"success", body, false, nil, actionAck},
		{"malformed", []byte("{"), false, nil, actionDrop},
		{"workout gone", body, false, domain.NotFound("workout", 7), actionDrop},
		{"transient", body, false, errors.New("s3 timeout"), actionRequeue},
		{"transient again", body, true, errors.New("s3 timeout"), actionDrop},
		{"no object storage", body, false, domain.ErrUnavailable, actionRequeue},
		{"no object storage again", body, true, fmt.Errorf("export: %w", domain.ErrUnavailable), actionRequeue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payloads.WorkoutExportPayload
			handler := func(_ context.Context, p payloads.WorkoutExportPayload) error {
				got = p
				return tt.handlerErr
			}

			action := processDelivery(context.Background(), tt.body, tt.redelivered, handler, logger.Discard())
			assert.Equal(t, tt.want, action, action.String())
			if tt.name != "malformed" {
				assert.Equal(t, payload, got)
			}
		})
	}
}

func TestExportObjectKey(t *testing.T) {
	id := uuid.MustParse("7f1c1e2a-3b4d-4e5f-8a9b-0c1d2e3f4a5b")
	p := payloads.WorkoutExportPayload{JobID: id, WorkoutID: 12, OwnerID: 4}
	assert.Equal(t, "exports/4/12/7f1c1e2a-3b4d-4e5f-8a9b-0c1d2e3f4a5b.json", p.ObjectKey())
}
