package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotInstitutional rejects registrations from outside the institution.
	ErrNotInstitutional = errors.New("identity: email outside the institutional domain")

	// ErrInvalidCredentials covers both unknown accounts and bad passwords.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an unconfirmed account for an institutional address and
// stores a hashed password.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	if !InstitutionalEmail(creds.Email) {
		return Account{}, ErrNotInstitutional
	}
	if len(creds.Password) < 8 {
		return Account{}, errors.New("identity: password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(creds.Email),
		Name:         creds.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}

	return account, nil
}

// Authenticate verifies credentials and reports whether the account's email
// has been confirmed. It satisfies the session provider's Authenticator
// contract.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return false, ErrInvalidCredentials
	}
	return account.EmailConfirmed, nil
}

// ConfirmEmail marks the account's address as verified.
func (s *Service) ConfirmEmail(ctx context.Context, email string) error {
	return s.repo.SetConfirmed(ctx, normalizeEmail(email), true)
}

// Get fetches an account by email.
func (s *Service) Get(ctx context.Context, email string) (Account, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
