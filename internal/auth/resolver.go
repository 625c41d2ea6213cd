package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// UserLookup finds a user by the token subject.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Resolver turns a bearer token into an active user.
type Resolver struct {
	creds *CredentialStore
	users UserLookup
}

func NewResolver(creds *CredentialStore, users UserLookup) *Resolver {
	return &Resolver{creds: creds, users: users}
}

// Resolve validates the token and loads its subject. Every failure,
// including an unknown subject or a username now held by a different
// account, is reported as ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := r.creds.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	user, err := r.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if user.ID != claims.UserID {
		return nil, fmt.Errorf("%w: subject belongs to another account", domain.ErrUnauthorized)
	}
	return user, nil
}

// RequireActive rejects disabled accounts.
func (r *Resolver) RequireActive(user *domain.User) (*domain.User, error) {
	if !user.IsActive {
		return nil, domain.ErrInactive
	}
	return user, nil
}

// Authenticate is Resolve followed by RequireActive.
func (r *Resolver) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.RequireActive(user)
}
