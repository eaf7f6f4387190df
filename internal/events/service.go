package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

const (
	// StatusScheduled is the initial event status.
	StatusScheduled = "scheduled"
	// StatusCanceled marks an event that will not happen.
	StatusCanceled = "canceled"
)

// Service exposes event operations.
type Service struct {
	repo Repository
}

// NewService builds an event service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create an event.
type CreateInput struct {
	Title        string
	Description  string
	Location     geo.Point
	RadiusMeters int
	StartsAt     time.Time
	EndsAt       time.Time
	PriceCents   int64
}

// Create registers a new event.
func (s *Service) Create(ctx context.Context, input CreateInput) (Event, error) {
	if input.Title == "" {
		return Event{}, fmt.Errorf("title is required")
	}
	if !input.Location.Valid() {
		return Event{}, fmt.Errorf("invalid event coordinates")
	}
	if input.RadiusMeters <= 0 {
		return Event{}, fmt.Errorf("radius must be positive")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return Event{}, fmt.Errorf("event must end after it starts")
	}
	if input.PriceCents < 0 {
		return Event{}, fmt.Errorf("price must not be negative")
	}

	event := Event{
		ID:           uuid.New().String(),
		Title:        input.Title,
		Description:  input.Description,
		Location:     input.Location,
		RadiusMeters: input.RadiusMeters,
		StartsAt:     input.StartsAt.UTC(),
		EndsAt:       input.EndsAt.UTC(),
		PriceCents:   input.PriceCents,
		Status:       StatusScheduled,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return Event{}, err
	}

	return event, nil
}

// Get retrieves event metadata.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.Get(ctx, id)
}

// List returns all events ordered by start time.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

// Cancel marks the event as canceled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, StatusCanceled)
}
