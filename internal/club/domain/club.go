package domain

import (
	"errors"
	"strings"
	"time"
)

// Club is a tenant container for memberships. Name is unique across the
// platform; description and address are opaque to the authorization core.
type Club struct {
	ID          string
	Name        string
	Description string
	Address     string
	CreatedAt   time.Time
}

// Sentinel errors returned by the club repository.
var (
	// ErrDuplicateClubName is returned by Create when a club with the same name exists.
	ErrDuplicateClubName = errors.New("club name already taken")
	// ErrClubNotFound is returned by Delete when the club does not exist.
	ErrClubNotFound = errors.New("club not found")
	// ErrInvalidClub is returned by Validate when a required field is missing.
	ErrInvalidClub = errors.New("club name is required")
)

// Validate checks required fields.
func (c *Club) Validate() error {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidClub
	}
	return nil
}
