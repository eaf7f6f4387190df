package registry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateRegistration indicates the account already holds a
	// registration for the event; the operation is idempotent.
	ErrDuplicateRegistration = errors.New("registry: duplicate registration")

	// ErrAlreadyCheckedIn indicates attendance was already recorded.
	ErrAlreadyCheckedIn = errors.New("registry: already checked in")

	// ErrNotFound indicates no such registration exists.
	ErrNotFound = errors.New("registry: registration not found")
)

// Registration ties an account to an event, with optional attendance.
type Registration struct {
	ID             string
	EventID        string
	AccountID      string
	RegisteredAt   time.Time
	CheckedIn      bool
	CheckedInAt    time.Time
	DistanceMeters int
}

// Store defines the contract implemented by registration backends.
type Store interface {
	Create(ctx context.Context, reg Registration) error
	Get(ctx context.Context, id string) (Registration, error)
	FindByEventAndAccount(ctx context.Context, eventID, accountID string) (Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]Registration, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time, distanceMeters int) error
}
