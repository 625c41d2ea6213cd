package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every reason a bearer token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the part of a validated token the rest of the app cares about.
type Claims struct {
	Subject   string
	UserID    int64
	ExpiresAt time.Time
}

// tokenClaims pins the token to one account: usernames can change and be
// taken by someone else, ids cannot.
type tokenClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// CredentialStore hashes and verifies passwords and issues and validates
// HS256 bearer tokens.
type CredentialStore struct {
	cfg Config
	now func() time.Time
}

func NewCredentialStore(cfg Config) (*CredentialStore, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errEmptySigningKey
	}
	return &CredentialStore{cfg: cfg.withDefaults(), now: time.Now}, nil
}

// TokenTTL is the lifetime used when Issue is called with ttl <= 0.
func (s *CredentialStore) TokenTTL() time.Duration { return s.cfg.TokenTTL }

// Issue signs a token for subject, the account with id userID, that
// expires after ttl.
func (s *CredentialStore) Issue(subject string, userID int64, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("issue token: empty subject")
	}
	if userID <= 0 {
		return "", time.Time{}, errors.New("issue token: missing user id")
	}
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, algorithm and expiry and returns the claims.
func (s *CredentialStore) Validate(tokenString string) (Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &tc,
		func(*jwt.Token) (any, error) { return s.cfg.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if tc.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return Claims{Subject: tc.Subject, UserID: tc.UserID, ExpiresAt: tc.ExpiresAt.Time}, nil
}
