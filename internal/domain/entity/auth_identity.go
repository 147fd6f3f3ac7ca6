package entity

import "time"

// ProviderEmailPass is the only auth provider this backend implements.
const ProviderEmailPass = "emailpass"

// AuthIdentity is a login identity owned by an auth provider.
// For emailpass the EntityID is the lower-cased email and PasswordHash a bcrypt hash.
type AuthIdentity struct {
	ID           string
	Provider     string
	EntityID     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustomerAuthLink joins a Medusa customer to the identity it logs in with.
type CustomerAuthLink struct {
	CustomerID     string
	AuthIdentityID string
	CreatedAt      time.Time
}
