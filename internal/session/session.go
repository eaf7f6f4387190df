package session

import "time"

// State is the lifecycle position of the managed session.
type State int

const (
	// StateUnknown means hydration has not run yet (or ran and must run again).
	StateUnknown State = iota
	// StateActive means a valid session is present.
	StateActive
	// StateExpired means the session lapsed by time or inactivity.
	StateExpired
	// StateSignedOut means the user logged out explicitly.
	StateSignedOut
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Session is the authenticated session tracked by the manager.
type Session struct {
	Email          string
	Token          string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// InactivityTimeout is the rolling window a session stays valid without
// user activity.
const InactivityTimeout = 60 * time.Minute

// ValidAt reports whether the session passes both time invariants at now:
// not past its expiry and not idle beyond the inactivity window.
func (s Session) ValidAt(now time.Time) bool {
	if s.Token == "" || s.Email == "" {
		return false
	}
	if !now.Before(s.ExpiresAt) {
		return false
	}
	return now.Sub(s.LastActivityAt) < InactivityTimeout
}

// Snapshot is the externally visible view of the manager: an explicit tagged
// value instead of a nil-means-loading convention.
type Snapshot struct {
	State   State
	Session Session // zero value unless State == StateActive
}
