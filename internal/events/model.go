package events

import (
	"time"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

// Event represents an institutional event open for registration.
type Event struct {
	ID           string
	Title        string
	Description  string
	Location     geo.Point
	RadiusMeters int
	StartsAt     time.Time
	EndsAt       time.Time
	PriceCents   int64
	Status       string
	CreatedAt    time.Time
}

// checkInGrace is how long before the start attendees may check in.
const checkInGrace = 30 * time.Minute

// CheckInOpen reports whether attendance may be recorded at the given time.
func (e Event) CheckInOpen(at time.Time) bool {
	return !at.Before(e.StartsAt.Add(-checkInGrace)) && !at.After(e.EndsAt)
}

// Free reports whether the event requires no payment.
func (e Event) Free() bool {
	return e.PriceCents == 0
}
