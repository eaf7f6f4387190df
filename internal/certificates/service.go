package certificates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/HenriqueLauxen/signea-sub001/internal/registry"
)

// ErrNotCheckedIn rejects issuance for registrations without attendance.
var ErrNotCheckedIn = errors.New("certificates: registration not checked in")

// Service issues attendance certificates.
type Service struct {
	store    Store
	registry *registry.Service
}

// NewService builds a certificate service.
func NewService(store Store, reg *registry.Service) *Service {
	return &Service{store: store, registry: reg}
}

// Issue creates the certificate for a checked-in registration. Issuance is
// one-shot: repeats return the existing certificate with ErrAlreadyIssued.
func (s *Service) Issue(ctx context.Context, registrationID string) (Certificate, error) {
	reg, err := s.registry.Get(ctx, registrationID)
	if err != nil {
		return Certificate{}, err
	}
	if !reg.CheckedIn {
		return Certificate{}, ErrNotCheckedIn
	}

	cert := Certificate{
		ID:             uuid.New().String(),
		RegistrationID: reg.ID,
		Code:           uuid.New().String(),
		IssuedAt:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, cert); err != nil {
		if errors.Is(err, ErrAlreadyIssued) {
			if existing, findErr := s.store.FindByRegistration(ctx, reg.ID); findErr == nil {
				return existing, ErrAlreadyIssued
			}
		}
		return Certificate{}, err
	}
	return cert, nil
}

// Verify resolves a certificate by its public code.
func (s *Service) Verify(ctx context.Context, code string) (Certificate, error) {
	return s.store.FindByCode(ctx, code)
}
