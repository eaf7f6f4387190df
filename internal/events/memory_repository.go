package events

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Event
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Event)}
}

func (r *memoryRepository) Create(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[event.ID]; exists {
		return errors.New("event exists")
	}
	r.storage[event.ID] = event
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.storage[id]
	if !ok {
		return Event{}, errors.New("event not found")
	}
	return event, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, len(r.storage))
	for _, ev := range r.storage {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.storage[id]
	if !ok {
		return errors.New("event not found")
	}
	event.Status = status
	r.storage[id] = event
	return nil
}
