package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/events"
	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

var (
	// ErrCheckInClosed indicates the event's check-in window is not open.
	ErrCheckInClosed = errors.New("registry: check-in window closed")

	// ErrOutsideRadius indicates the attendee is too far from the event.
	ErrOutsideRadius = errors.New("registry: outside allowed radius")

	// ErrEventCanceled rejects operations on canceled events.
	ErrEventCanceled = errors.New("registry: event canceled")
)

// Service coordinates registrations and GPS-validated check-in.
type Service struct {
	store  Store
	events *events.Service
}

// NewService builds a registry service.
func NewService(store Store, events *events.Service) *Service {
	return &Service{store: store, events: events}
}

// Register enrolls an account in an event. Repeats return
// ErrDuplicateRegistration along with the existing registration.
func (s *Service) Register(ctx context.Context, eventID, accountID string) (Registration, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if event.Status == events.StatusCanceled {
		return Registration{}, ErrEventCanceled
	}

	reg := Registration{
		ID:           uuid.New().String(),
		EventID:      event.ID,
		AccountID:    accountID,
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, reg); err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			if existing, findErr := s.store.FindByEventAndAccount(ctx, event.ID, accountID); findErr == nil {
				return existing, ErrDuplicateRegistration
			}
		}
		return Registration{}, err
	}
	return reg, nil
}

// CheckInResult reports a validated attendance.
type CheckInResult struct {
	Registration Registration
	Proximity    geo.ProximityResult
}

// CheckIn records attendance when the subject is inside the event radius and
// the check-in window is open.
func (s *Service) CheckIn(ctx context.Context, registrationID string, subject geo.Point, at time.Time) (CheckInResult, error) {
	reg, err := s.store.Get(ctx, registrationID)
	if err != nil {
		return CheckInResult{}, err
	}
	if reg.CheckedIn {
		return CheckInResult{}, ErrAlreadyCheckedIn
	}

	event, err := s.events.Get(ctx, reg.EventID)
	if err != nil {
		return CheckInResult{}, err
	}
	if event.Status == events.StatusCanceled {
		return CheckInResult{}, ErrEventCanceled
	}
	if !event.CheckInOpen(at) {
		return CheckInResult{}, ErrCheckInClosed
	}

	proximity := geo.CheckProximity(subject, event.Location, event.RadiusMeters)
	if !proximity.WithinRadius {
		return CheckInResult{Proximity: proximity}, ErrOutsideRadius
	}

	if err := s.store.MarkCheckedIn(ctx, reg.ID, at.UTC(), proximity.DistanceMeters); err != nil {
		return CheckInResult{}, err
	}

	reg.CheckedIn = true
	reg.CheckedInAt = at.UTC()
	reg.DistanceMeters = proximity.DistanceMeters
	return CheckInResult{Registration: reg, Proximity: proximity}, nil
}

// Get fetches a registration.
func (s *Service) Get(ctx context.Context, id string) (Registration, error) {
	return s.store.Get(ctx, id)
}

// Attendance lists an event's registrations.
func (s *Service) Attendance(ctx context.Context, eventID string) ([]Registration, error) {
	return s.store.ListByEvent(ctx, eventID)
}
