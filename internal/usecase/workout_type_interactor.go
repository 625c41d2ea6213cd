package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

type workoutTypeInteractor struct {
	types  ports.WorkoutTypeStorage
	files  ports.FileStorage // nil when object storage is not configured
	logger *slog.Logger
}

func NewWorkoutTypeUseCase(types ports.WorkoutTypeStorage, files ports.FileStorage, logger *slog.Logger) WorkoutTypeUseCase {
	return &workoutTypeInteractor{types: types, files: files, logger: logger}
}

func (uc *workoutTypeInteractor) CreateWorkoutType(ctx context.Context, ownerID int64, in domain.WorkoutTypeInput) (*domain.WorkoutType, error) {
	name := domain.NormalizeName(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := uc.checkName(ctx, ownerID, name, 0); err != nil {
		return nil, err
	}

	wt := &domain.WorkoutType{UserID: ownerID, Name: name, Description: in.Description, IconURL: in.IconURL}
	if err := uc.types.CreateWorkoutType(ctx, wt); err != nil {
		return nil, err
	}
	return wt, nil
}

func (uc *workoutTypeInteractor) GetWorkoutType(ctx context.Context, ownerID, id int64) (*domain.WorkoutType, error) {
	return uc.types.GetWorkoutType(ctx, id, ownerID)
}

func (uc *workoutTypeInteractor) ListWorkoutTypes(ctx context.Context, ownerID int64, page domain.Page) ([]domain.WorkoutType, error) {
	return uc.types.ListWorkoutTypes(ctx, ownerID, page)
}

func (uc *workoutTypeInteractor) UpdateWorkoutType(ctx context.Context, ownerID, id int64, in domain.WorkoutTypeUpdate) (*domain.WorkoutType, error) {
	wt, err := uc.types.GetWorkoutType(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Name.Set {
		name := domain.NormalizeName(in.Name.Value)
		if in.Name.Null || name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		if name != wt.Name {
			if err := uc.checkName(ctx, ownerID, name, id); err != nil {
				return nil, err
			}
		}
		wt.Name = name
	}
	if in.Description.Set {
		wt.Description = in.Description.Ptr()
	}
	if in.IconURL.Set {
		wt.IconURL = in.IconURL.Ptr()
	}

	if err := uc.types.UpdateWorkoutType(ctx, wt); err != nil {
		return nil, err
	}
	return wt, nil
}

// DeleteWorkoutType refuses to delete a type that workouts still use.
func (uc *workoutTypeInteractor) DeleteWorkoutType(ctx context.Context, ownerID, id int64) error {
	wt, err := uc.types.GetWorkoutType(ctx, id, ownerID)
	if err != nil {
		return err
	}
	inUse, err := uc.types.WorkoutTypeInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.Conflict("workout type %d is used by workouts", id)
	}
	if err := uc.types.DeleteWorkoutType(ctx, id, ownerID); err != nil {
		return err
	}

	if wt.IconURL != nil && uc.files != nil {
		if err := uc.files.DeleteFile(ctx, iconKey(ownerID, id)); err != nil {
			uc.logger.Warn("failed to delete icon of removed workout type", "id", id, "error", err)
		}
	}
	return nil
}

// SetIcon stores content as the type's icon and records its URL.
func (uc *workoutTypeInteractor) SetIcon(ctx context.Context, ownerID, id int64, content io.Reader, contentType string) (*domain.WorkoutType, error) {
	if uc.files == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrUnavailable)
	}
	wt, err := uc.types.GetWorkoutType(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	url, err := uc.files.UploadFile(ctx, iconKey(ownerID, id), content, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload icon: %w", err)
	}

	wt.IconURL = &url
	if err := uc.types.UpdateWorkoutType(ctx, wt); err != nil {
		return nil, err
	}

	uc.logger.Info("workout type icon stored",
		"id", id,
		"content_type", contentType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return wt, nil
}

func (uc *workoutTypeInteractor) RemoveIcon(ctx context.Context, ownerID, id int64) (*domain.WorkoutType, error) {
	if uc.files == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrUnavailable)
	}
	wt, err := uc.types.GetWorkoutType(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := uc.files.DeleteFile(ctx, iconKey(ownerID, id)); err != nil {
		return nil, fmt.Errorf("delete icon: %w", err)
	}

	wt.IconURL = nil
	if err := uc.types.UpdateWorkoutType(ctx, wt); err != nil {
		return nil, err
	}
	return wt, nil
}

func (uc *workoutTypeInteractor) checkName(ctx context.Context, ownerID int64, name string, excludeID int64) error {
	taken, err := uc.types.WorkoutTypeNameTaken(ctx, ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("workout type %q already exists", name)
	}
	return nil
}

func iconKey(ownerID, id int64) string {
	return fmt.Sprintf("icons/%d/%d", ownerID, id)
}
