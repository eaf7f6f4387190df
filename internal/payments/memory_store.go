package payments

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu             sync.RWMutex
	byID           map[string]Charge
	byRegistration map[string]string
}

// NewMemoryStore constructs an in-memory charge store for tests.
func NewMemoryStore() Store {
	return &memoryStore{
		byID:           make(map[string]Charge),
		byRegistration: make(map[string]string),
	}
}

func (s *memoryStore) Create(_ context.Context, charge Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRegistration[charge.RegistrationID]; exists {
		return ErrChargeExists
	}
	s.byID[charge.ID] = charge
	s.byRegistration[charge.RegistrationID] = charge.ID
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	charge, ok := s.byID[id]
	if !ok {
		return Charge{}, ErrChargeNotFound
	}
	return charge, nil
}

func (s *memoryStore) FindByRegistration(_ context.Context, registrationID string) (Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRegistration[registrationID]
	if !ok {
		return Charge{}, ErrChargeNotFound
	}
	return s.byID[id], nil
}

func (s *memoryStore) MarkPaid(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	charge, ok := s.byID[id]
	if !ok || charge.Status != StatusCreated {
		return ErrChargeNotFound
	}
	charge.Status = StatusPaid
	charge.PaidAt = at
	s.byID[id] = charge
	return nil
}
