package certificates

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no certificate matches the lookup.
	ErrNotFound = errors.New("certificates: not found")

	// ErrAlreadyIssued indicates the registration already has a certificate.
	ErrAlreadyIssued = errors.New("certificates: already issued")
)

// Store persists certificates.
type Store interface {
	Create(ctx context.Context, cert Certificate) error
	FindByRegistration(ctx context.Context, registrationID string) (Certificate, error)
	FindByCode(ctx context.Context, code string) (Certificate, error)
}

// PostgresStore stores certificates in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed certificate store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, cert Certificate) error {
	certID, err := uuid.Parse(cert.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO certificates (id, registration_id, code, issued_at)
        VALUES ($1, $2, $3, $4)`, certID, cert.RegistrationID, cert.Code, cert.IssuedAt.UTC())
	return err
}

func (s *PostgresStore) FindByRegistration(ctx context.Context, registrationID string) (Certificate, error) {
	row := s.db.QueryRow(ctx, `SELECT id, registration_id, code, issued_at
        FROM certificates WHERE registration_id = $1`, registrationID)
	return scanCertificate(row)
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (Certificate, error) {
	row := s.db.QueryRow(ctx, `SELECT id, registration_id, code, issued_at
        FROM certificates WHERE code = $1`, code)
	return scanCertificate(row)
}

func scanCertificate(row pgx.Row) (Certificate, error) {
	var (
		id     uuid.UUID
		cert   Certificate
		issued time.Time
	)
	if err := row.Scan(&id, &cert.RegistrationID, &cert.Code, &issued); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Certificate{}, ErrNotFound
		}
		return Certificate{}, err
	}
	cert.ID = id.String()
	cert.IssuedAt = issued.UTC()
	return cert, nil
}

type memoryStore struct {
	mu             sync.RWMutex
	byRegistration map[string]Certificate
	byCode         map[string]string
}

// NewMemoryStore constructs an in-memory certificate store for tests.
func NewMemoryStore() Store {
	return &memoryStore{
		byRegistration: make(map[string]Certificate),
		byCode:         make(map[string]string),
	}
}

func (s *memoryStore) Create(_ context.Context, cert Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRegistration[cert.RegistrationID]; exists {
		return ErrAlreadyIssued
	}
	s.byRegistration[cert.RegistrationID] = cert
	s.byCode[cert.Code] = cert.RegistrationID
	return nil
}

func (s *memoryStore) FindByRegistration(_ context.Context, registrationID string) (Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.byRegistration[registrationID]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return cert, nil
}

func (s *memoryStore) FindByCode(_ context.Context, code string) (Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	registrationID, ok := s.byCode[code]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return s.byRegistration[registrationID], nil
}
