// Package catalog imports starter workout types and exercises from YAML.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"github.com/GoArmGo/WorkoutTracker/internal/usecase"
)

// Catalog is the document format of a seed file.
type Catalog struct {
	WorkoutTypes []WorkoutType `yaml:"workout_types"`
	Exercises    []Exercise    `yaml:"exercises"`
}

type WorkoutType struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Exercise struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	MuscleGroups []string `yaml:"muscle_groups"`
}

// Decode reads a catalog, rejecting unknown keys and unnamed entries.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i, wt := range c.WorkoutTypes {
		if domain.NormalizeName(wt.Name) == "" {
			return nil, fmt.Errorf("workout_types[%d]: name is required", i)
		}
	}
	for i, e := range c.Exercises {
		if domain.NormalizeName(e.Name) == "" {
			return nil, fmt.Errorf("exercises[%d]: name is required", i)
		}
	}
	return &c, nil
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Result counts what Seed did.
type Result struct {
	WorkoutTypesCreated int
	ExercisesCreated    int
	Skipped             int
}

// Seeder creates catalog entries for one user through the use cases, so
// the same normalization and uniqueness rules apply as over HTTP.
type Seeder struct {
	types     usecase.WorkoutTypeUseCase
	exercises usecase.ExerciseUseCase
	logger    *slog.Logger
}

func NewSeeder(types usecase.WorkoutTypeUseCase, exercises usecase.ExerciseUseCase, logger *slog.Logger) *Seeder {
	return &Seeder{types: types, exercises: exercises, logger: logger}
}

// Seed creates every entry of c for ownerID. Entries whose name the owner
// already uses are skipped, so seeding twice is harmless.
func (s *Seeder) Seed(ctx context.Context, ownerID int64, c *Catalog) (Result, error) {
	var res Result

	for _, wt := range c.WorkoutTypes {
		_, err := s.types.CreateWorkoutType(ctx, ownerID, domain.WorkoutTypeInput{
			Name:        wt.Name,
			Description: optional(wt.Description),
		})
		switch {
		case errors.Is(err, domain.ErrConflict):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed workout type %q: %w", wt.Name, err)
		default:
			res.WorkoutTypesCreated++
		}
	}

	for _, e := range c.Exercises {
		_, err := s.exercises.CreateExercise(ctx, ownerID, domain.ExerciseInput{
			Name:         e.Name,
			Description:  optional(e.Description),
			MuscleGroups: e.MuscleGroups,
		})
		switch {
		case errors.Is(err, domain.ErrConflict):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed exercise %q: %w", e.Name, err)
		default:
			res.ExercisesCreated++
		}
	}

	s.logger.Info("catalog seeded",
		"owner_id", ownerID,
		"workout_types_created", res.WorkoutTypesCreated,
		"exercises_created", res.ExercisesCreated,
		"skipped", res.Skipped,
	)
	return res, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
