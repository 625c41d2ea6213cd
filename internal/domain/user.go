// internal/domain/user.go
package domain

import (
	"time"
)

// User is an account owner. Maps to the 'users' table; gorm derives
// column names from the field names.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName pins the gorm table name.
func (User) TableName() string { return "users" }

// UserUpdate carries the profile fields a user may change about themselves.
// Nil fields are left as they are.
type UserUpdate struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// AccessToken is what a successful login hands back to the client.
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
