package domain

import (
	"errors"
	"strings"
	"time"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is an account identity. Email is unique across the platform; the id is
// stable for the lifetime of the account.
type User struct {
	ID        string
	Email     string
	Name      string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrDuplicateEmail is returned by the user repository when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Validate checks required fields. Returns an error describing the first problem found.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user: id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user: email is required")
	}
	if u.Status != UserStatusActive && u.Status != UserStatusDisabled {
		return errors.New("user: invalid status")
	}
	return nil
}
