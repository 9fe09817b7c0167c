package domain

import "time"

// IdentityProvider names the credential source for an identity.
type IdentityProvider string

// IdentityProviderLocal is email+password stored locally.
const IdentityProviderLocal IdentityProvider = "local"

// Identity holds one credential binding for a user. For the local provider,
// ProviderID is the email and PasswordHash the bcrypt hash.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
}
