package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSymbols is the punctuation set accepted by the symbol rule.
const DefaultSymbols = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy describes what a password must contain.
type PasswordPolicy struct {
	MinLength int
	Symbols   string
}

// DefaultPolicy requires 8 characters with upper, lower, digit and symbol.
func DefaultPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, Symbols: DefaultSymbols}
}

// Config is everything the credential store needs. It is passed in at
// construction; nothing in this package reads the environment.
type Config struct {
	SigningKey []byte
	TokenTTL   time.Duration
	BcryptCost int
	Policy     PasswordPolicy
}

var errEmptySigningKey = errors.New("auth: signing key must not be empty")

func (c Config) withDefaults() Config {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 30 * time.Minute
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.Policy.MinLength == 0 && c.Policy.Symbols == "" {
		c.Policy = DefaultPolicy()
	}
	return c
}
