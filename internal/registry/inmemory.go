package registry

import (
	"context"
	"sort"
	"sync"
	"time"
)

type inMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Registration
	byEvent map[string]map[string]string // eventID -> accountID -> registrationID
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests.
func NewInMemory() Store {
	return &inMemoryStore{
		byID:    make(map[string]Registration),
		byEvent: make(map[string]map[string]string),
	}
}

func (s *inMemoryStore) Create(_ context.Context, reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, ok := s.byEvent[reg.EventID]
	if !ok {
		accounts = make(map[string]string)
		s.byEvent[reg.EventID] = accounts
	}
	if _, exists := accounts[reg.AccountID]; exists {
		return ErrDuplicateRegistration
	}

	accounts[reg.AccountID] = reg.ID
	s.byID[reg.ID] = reg
	return nil
}

func (s *inMemoryStore) Get(_ context.Context, id string) (Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byID[id]
	if !ok {
		return Registration{}, ErrNotFound
	}
	return reg, nil
}

func (s *inMemoryStore) FindByEventAndAccount(_ context.Context, eventID, accountID string) (Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts, ok := s.byEvent[eventID]
	if !ok {
		return Registration{}, ErrNotFound
	}
	id, ok := accounts[accountID]
	if !ok {
		return Registration{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *inMemoryStore) ListByEvent(_ context.Context, eventID string) ([]Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Registration
	for _, id := range s.byEvent[eventID] {
		out = append(out, s.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (s *inMemoryStore) MarkCheckedIn(_ context.Context, id string, at time.Time, distanceMeters int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if reg.CheckedIn {
		return ErrAlreadyCheckedIn
	}
	reg.CheckedIn = true
	reg.CheckedInAt = at
	reg.DistanceMeters = distanceMeters
	s.byID[id] = reg
	return nil
}
