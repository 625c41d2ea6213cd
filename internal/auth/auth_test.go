package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

func newTestStore(t *testing.T) *CredentialStore {
	t.Helper()
	s, err := NewCredentialStore(Config{
		SigningKey: []byte("test-signing-key"),
		TokenTTL:   30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return s
}

func TestNewCredentialStoreRequiresKey(t *testing.T) {
	_, err := NewCredentialStore(Config{})
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		password string
		rule     string
	}{
		{"too short", "abc", RuleLength},
		{"no uppercase", "password1!", RuleUppercase},
		{"no lowercase", "PASSWORD1!", RuleLowercase},
		{"no digit", "Password!!", RuleDigit},
		{"no symbol", "Password11", RuleSymbol},
		{"symbol outside set", "Password1_", RuleSymbol},
		{"valid", "Password1!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CheckPassword(tt.password)
			if tt.rule == "" {
				assert.NoError(t, err)
				return
			}

			var weak *WeakPasswordError
			require.ErrorAs(t, err, &weak)
			assert.Equal(t, tt.rule, weak.Rule)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hash)

	assert.True(t, s.Verify("Password1!", hash))
	assert.False(t, s.Verify("Password2!", hash))
	assert.False(t, s.Verify("Password1!", "not-a-hash"))
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	token, expiresAt, err := s.Issue("alice", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(30*time.Minute), expiresAt)

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, int64(1), claims.UserID)
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	token, _, err := s.Issue("alice", 1, time.Minute)
	require.NoError(t, err)

	s.now = func() time.Time { return fixed.Add(2 * time.Minute) }
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	s := newTestStore(t)
	other, err := NewCredentialStore(Config{SigningKey: []byte("another-key"), BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	token, _, err := other.Issue("alice", 1, 0)
	require.NoError(t, err)

	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsMalformedAndUnsigned(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsMissingSubjectAndExpiry(t *testing.T) {
	s := newTestStore(t)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	_, err = s.Validate(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	_, err = s.Validate(noExpiry)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUserID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	_, err = s.Validate(noUserID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = s.Issue("alice", 0, 0)
	assert.Error(t, err)
}

type mapLookup map[string]*domain.User

func (m mapLookup) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

type failingLookup struct{}

func (failingLookup) GetUserByUsername(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestResolverAuthenticate(t *testing.T) {
	s := newTestStore(t)
	users := mapLookup{
		"alice": {ID: 1, Username: "alice", IsActive: true},
		"bob":   {ID: 2, Username: "bob", IsActive: false},
	}
	r := NewResolver(s, users)
	ctx := context.Background()

	aliceToken, _, err := s.Issue("alice", 1, 0)
	require.NoError(t, err)
	user, err := r.Authenticate(ctx, aliceToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	bobToken, _, err := s.Issue("bob", 2, 0)
	require.NoError(t, err)
	_, err = r.Authenticate(ctx, bobToken)
	assert.ErrorIs(t, err, domain.ErrInactive)

	ghostToken, _, err := s.Issue("ghost", 3, 0)
	require.NoError(t, err)
	_, err = r.Authenticate(ctx, ghostToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = r.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolverRejectsUsernameHeldByAnotherAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// alice (id 1) was renamed and id 7 registered the free username
	r := NewResolver(s, mapLookup{"alice": {ID: 7, Username: "alice", IsActive: true}})

	staleToken, _, err := s.Issue("alice", 1, 0)
	require.NoError(t, err)
	_, err = r.Authenticate(ctx, staleToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ownToken, _, err := s.Issue("alice", 7, 0)
	require.NoError(t, err)
	user, err := r.Authenticate(ctx, ownToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestResolverPassesThroughStorageFailure(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s, failingLookup{})

	token, _, err := s.Issue("alice", 1, 0)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}
