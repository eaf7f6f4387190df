package identity

import "time"

// Account represents a registered member of the institution.
type Account struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   []byte
	EmailConfirmed bool
	CreatedAt      time.Time
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
	Name     string
}
