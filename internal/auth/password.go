package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Password rules, reported in this order.
const (
	RuleLength    = "length"
	RuleUppercase = "uppercase"
	RuleLowercase = "lowercase"
	RuleDigit     = "digit"
	RuleSymbol    = "symbol"
)

// WeakPasswordError names the first rule a password failed.
type WeakPasswordError struct {
	Rule    string
	Message string
}

func (e *WeakPasswordError) Error() string {
	return "weak password: " + e.Message
}

// Unwrap lets callers classify a weak password as a validation failure.
func (e *WeakPasswordError) Unwrap() error { return domain.ErrValidation }

// CheckPassword enforces the configured policy.
func (s *CredentialStore) CheckPassword(password string) error {
	p := s.cfg.Policy

	if len([]rune(password)) < p.MinLength {
		return &WeakPasswordError{
			Rule:    RuleLength,
			Message: fmt.Sprintf("password must be at least %d characters long", p.MinLength),
		}
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(p.Symbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return &WeakPasswordError{Rule: RuleUppercase, Message: "password must contain at least one uppercase letter"}
	case !lower:
		return &WeakPasswordError{Rule: RuleLowercase, Message: "password must contain at least one lowercase letter"}
	case !digit:
		return &WeakPasswordError{Rule: RuleDigit, Message: "password must contain at least one digit"}
	case !symbol:
		return &WeakPasswordError{
			Rule:    RuleSymbol,
			Message: fmt.Sprintf("password must contain at least one special character (%s)", p.Symbols),
		}
	}
	return nil
}

// Hash returns a bcrypt hash of the password.
func (s *CredentialStore) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash.
func (s *CredentialStore) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
