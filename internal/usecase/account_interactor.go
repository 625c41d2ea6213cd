package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

type accountInteractor struct {
	users  ports.UserStorage
	creds  Credentials
	logger *slog.Logger
}

func NewAccountUseCase(users ports.UserStorage, creds Credentials, logger *slog.Logger) AccountUseCase {
	return &accountInteractor{users: users, creds: creds, logger: logger}
}

func (uc *accountInteractor) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	username, err = normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := uc.creds.CheckPassword(password); err != nil {
		return nil, err
	}
	if err := uc.ensureAvailable(ctx, 0, email, username); err != nil {
		return nil, err
	}

	hash, err := uc.creds.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: email, Username: username, PasswordHash: hash, IsActive: true}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login takes the email as the login name. Unknown emails and wrong
// passwords fail the same way.
func (uc *accountInteractor) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	user, err := uc.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !uc.creds.Verify(password, user.PasswordHash) {
		uc.logger.Warn("login rejected", "user_id", user.ID)
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, domain.ErrInactive
	}

	token, expiresAt, err := uc.creds.Issue(user.Username, user.ID, 0)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return &domain.AccessToken{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

func (uc *accountInteractor) UpdateProfile(ctx context.Context, user *domain.User, in domain.UserUpdate) (*domain.User, error) {
	next := *user

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		next.Email = email
	}
	if in.Username != nil {
		username, err := normalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		next.Username = username
	}

	var newEmail, newUsername string
	if next.Email != user.Email {
		newEmail = next.Email
	}
	if next.Username != user.Username {
		newUsername = next.Username
	}
	if err := uc.ensureAvailable(ctx, user.ID, newEmail, newUsername); err != nil {
		return nil, err
	}

	if in.Password != nil {
		if err := uc.creds.CheckPassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := uc.creds.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}

	if err := uc.users.UpdateUser(ctx, &next); err != nil {
		return nil, err
	}
	uc.logger.Info("user profile updated", "user_id", next.ID)
	return &next, nil
}

func (uc *accountInteractor) DeleteAccount(ctx context.Context, userID int64) error {
	if err := uc.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	uc.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (uc *accountInteractor) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ensureAvailable checks that email and username (when non-empty) are not
// held by a user other than selfID.
func (uc *accountInteractor) ensureAvailable(ctx context.Context, selfID int64, email, username string) error {
	if email != "" {
		u, err := uc.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil && u.ID != selfID:
			return domain.Conflict("email already registered")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}
	if username != "" {
		u, err := uc.users.GetUserByUsername(ctx, username)
		switch {
		case err == nil && u.ID != selfID:
			return domain.Conflict("username already taken")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.Invalid("invalid email address")
	}
	return email, nil
}

func normalizeUsername(username string) (string, error) {
	username = domain.NormalizeName(username)
	n := len([]rune(username))
	if n < minUsernameLength || n > maxUsernameLength {
		return "", domain.Invalid("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	return username, nil
}
