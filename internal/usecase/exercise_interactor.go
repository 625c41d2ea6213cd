package usecase

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

type exerciseInteractor struct {
	exercises ports.ExerciseStorage
	logger    *slog.Logger
}

func NewExerciseUseCase(exercises ports.ExerciseStorage, logger *slog.Logger) ExerciseUseCase {
	return &exerciseInteractor{exercises: exercises, logger: logger}
}

func (uc *exerciseInteractor) CreateExercise(ctx context.Context, ownerID int64, in domain.ExerciseInput) (*domain.Exercise, error) {
	name := domain.NormalizeName(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := uc.checkName(ctx, ownerID, name, 0); err != nil {
		return nil, err
	}

	e := &domain.Exercise{
		UserID:       ownerID,
		Name:         name,
		Description:  in.Description,
		MuscleGroups: domain.NormalizeMuscleGroups(in.MuscleGroups),
	}
	if err := uc.exercises.CreateExercise(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *exerciseInteractor) GetExercise(ctx context.Context, ownerID, id int64) (*domain.Exercise, error) {
	return uc.exercises.GetExercise(ctx, id, ownerID)
}

func (uc *exerciseInteractor) ListExercises(ctx context.Context, ownerID int64, muscleGroups []string, page domain.Page) ([]domain.Exercise, error) {
	return uc.exercises.ListExercises(ctx, ownerID, domain.NormalizeMuscleGroups(muscleGroups), page)
}

func (uc *exerciseInteractor) UpdateExercise(ctx context.Context, ownerID, id int64, in domain.ExerciseUpdate) (*domain.Exercise, error) {
	e, err := uc.exercises.GetExercise(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Name.Set {
		name := domain.NormalizeName(in.Name.Value)
		if in.Name.Null || name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		if name != e.Name {
			if err := uc.checkName(ctx, ownerID, name, id); err != nil {
				return nil, err
			}
		}
		e.Name = name
	}
	if in.Description.Set {
		e.Description = in.Description.Ptr()
	}
	if in.MuscleGroups != nil {
		e.MuscleGroups = domain.NormalizeMuscleGroups(*in.MuscleGroups)
	}

	if err := uc.exercises.UpdateExercise(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExercise refuses to delete an exercise that workouts still use.
func (uc *exerciseInteractor) DeleteExercise(ctx context.Context, ownerID, id int64) error {
	if _, err := uc.exercises.GetExercise(ctx, id, ownerID); err != nil {
		return err
	}
	inUse, err := uc.exercises.ExerciseInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.Conflict("exercise %d is used by workouts", id)
	}
	return uc.exercises.DeleteExercise(ctx, id, ownerID)
}

func (uc *exerciseInteractor) checkName(ctx context.Context, ownerID int64, name string, excludeID int64) error {
	taken, err := uc.exercises.ExerciseNameTaken(ctx, ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("exercise %q already exists", name)
	}
	return nil
}
