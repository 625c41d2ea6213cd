package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// GormUserStorage implements ports.UserStorage with GORM.
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	now := time.Now().UTC().Truncate(time.Microsecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logger.Warn("failed to insert user", "username", user.Username, "error", err)
		return translateWriteErr(err, "user")
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormUserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormUserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *GormUserStorage) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("failed to select user", "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// UpdateUser writes the mutable profile columns. Updates with a map so that
// zero values such as is_active=false are written too.
func (s *GormUserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()
	user.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":         user.Email,
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"is_active":     user.IsActive,
		"updated_at":    user.UpdatedAt,
	})
	if res.Error != nil {
		return translateWriteErr(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user", user.ID)
	}

	s.logger.Info("user updated",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ownedRowDeletes removes everything a user owns, children first. There are
// no ON DELETE CASCADE rules in the schema, so the order matters.
var ownedRowDeletes = []string{
	`DELETE FROM workout_sets WHERE workout_exercise_id IN (
		SELECT we.id FROM workout_exercises we JOIN workouts w ON w.id = we.workout_id WHERE w.user_id = ?)`,
	`DELETE FROM workout_exercises WHERE workout_id IN (SELECT id FROM workouts WHERE user_id = ?)`,
	`DELETE FROM workouts WHERE user_id = ?`,
	`DELETE FROM exercise_muscle_groups WHERE exercise_id IN (SELECT id FROM exercises WHERE user_id = ?)`,
	`DELETE FROM exercises WHERE user_id = ?`,
	`DELETE FROM workout_types WHERE user_id = ?`,
}

func (s *GormUserStorage) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, q := range ownedRowDeletes {
			if err := tx.Exec(q, id).Error; err != nil {
				return fmt.Errorf("delete owned rows: %w", err)
			}
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("user", id)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("user deleted with owned data",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
