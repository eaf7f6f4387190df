package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound indicates no shadow record exists for the queried keys.
var ErrRecordNotFound = errors.New("session: record not found")

// LocalStore is the durable key-value storage holding the shadow session's
// email and token on the client side.
type LocalStore interface {
	Load(ctx context.Context) (email, token string, err error)
	Save(ctx context.Context, email, token string) error
	Clear(ctx context.Context) error
}

// Record is the remote shadow row backing a legacy session.
type Record struct {
	Email          string
	Token          string
	ExpiresAt      time.Time
	LastActivityAt time.Time
	EmailConfirmed bool
}

// RemoteStore is the relational store holding shadow-session records, matched
// exactly on email+token.
type RemoteStore interface {
	Find(ctx context.Context, email, token string) (Record, error)
	// Put attaches a fresh token and window to the user's row at login.
	Put(ctx context.Context, rec Record) error
	// Touch updates last_activity_at and session_expires_at together,
	// keeping the rolling-window invariant.
	Touch(ctx context.Context, email, token string, lastActivity, expires time.Time) error
	Clear(ctx context.Context, email string) error
}

const (
	localEmailKey = "session_email"
	localTokenKey = "session_token"
)

// RedisLocalStore implements LocalStore on Redis.
type RedisLocalStore struct {
	client *redis.Client
	prefix string
}

// NewRedisLocalStore builds a Redis-backed local store. The prefix isolates
// keys per deployment.
func NewRedisLocalStore(client *redis.Client, prefix string) *RedisLocalStore {
	if prefix == "" {
		prefix = "signea:"
	}
	return &RedisLocalStore{client: client, prefix: prefix}
}

func (s *RedisLocalStore) Load(ctx context.Context) (string, string, error) {
	vals, err := s.client.MGet(ctx, s.prefix+localEmailKey, s.prefix+localTokenKey).Result()
	if err != nil {
		return "", "", fmt.Errorf("load local session: %w", err)
	}
	email, _ := vals[0].(string)
	token, _ := vals[1].(string)
	if email == "" || token == "" {
		return "", "", ErrRecordNotFound
	}
	return email, token, nil
}

func (s *RedisLocalStore) Save(ctx context.Context, email, token string) error {
	if err := s.client.MSet(ctx, s.prefix+localEmailKey, email, s.prefix+localTokenKey, token).Err(); err != nil {
		return fmt.Errorf("save local session: %w", err)
	}
	return nil
}

func (s *RedisLocalStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.prefix+localEmailKey, s.prefix+localTokenKey).Err(); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	return nil
}

// PostgresRemoteStore implements RemoteStore against the users table.
type PostgresRemoteStore struct {
	db *pgxpool.Pool
}

// NewPostgresRemoteStore builds a Postgres-backed shadow-session store.
func NewPostgresRemoteStore(db *pgxpool.Pool) *PostgresRemoteStore {
	return &PostgresRemoteStore{db: db}
}

func (s *PostgresRemoteStore) Find(ctx context.Context, email, token string) (Record, error) {
	row := s.db.QueryRow(ctx, `SELECT email, session_token, session_expires_at, last_activity_at, email_confirmado
        FROM users WHERE email = $1 AND session_token = $2`, email, token)
	var rec Record
	if err := row.Scan(&rec.Email, &rec.Token, &rec.ExpiresAt, &rec.LastActivityAt, &rec.EmailConfirmed); err != nil {
		return Record{}, ErrRecordNotFound
	}
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	rec.LastActivityAt = rec.LastActivityAt.UTC()
	return rec, nil
}

func (s *PostgresRemoteStore) Put(ctx context.Context, rec Record) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET session_token = $1, session_expires_at = $2, last_activity_at = $3
        WHERE email = $4`, rec.Token, rec.ExpiresAt.UTC(), rec.LastActivityAt.UTC(), rec.Email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresRemoteStore) Touch(ctx context.Context, email, token string, lastActivity, expires time.Time) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET last_activity_at = $1, session_expires_at = $2
        WHERE email = $3 AND session_token = $4`, lastActivity.UTC(), expires.UTC(), email, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresRemoteStore) Clear(ctx context.Context, email string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET session_token = NULL, session_expires_at = NULL, last_activity_at = NULL
        WHERE email = $1`, email)
	return err
}

type memoryLocalStore struct {
	mu    sync.Mutex
	email string
	token string
}

// NewMemoryLocalStore builds an in-memory local store for development runs
// without Redis.
func NewMemoryLocalStore() LocalStore {
	return &memoryLocalStore{}
}

func (m *memoryLocalStore) Load(context.Context) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.email == "" || m.token == "" {
		return "", "", ErrRecordNotFound
	}
	return m.email, m.token, nil
}

func (m *memoryLocalStore) Save(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = email
	m.token = token
	return nil
}

func (m *memoryLocalStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = ""
	m.token = ""
	return nil
}

type memoryRemoteStore struct {
	mu      sync.Mutex
	records map[string]Record // keyed by email
}

// NewMemoryRemoteStore builds an in-memory shadow store for tests.
func NewMemoryRemoteStore() RemoteStore {
	return &memoryRemoteStore{records: make(map[string]Record)}
}

// SeedRecord installs a shadow record, replacing any for the same email.
func SeedRecord(store RemoteStore, rec Record) {
	if m, ok := store.(*memoryRemoteStore); ok {
		m.mu.Lock()
		m.records[rec.Email] = rec
		m.mu.Unlock()
	}
}

func (m *memoryRemoteStore) Find(_ context.Context, email, token string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok || rec.Token != token {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (m *memoryRemoteStore) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[rec.Email]; ok {
		rec.EmailConfirmed = existing.EmailConfirmed
	}
	m.records[rec.Email] = rec
	return nil
}

func (m *memoryRemoteStore) Touch(_ context.Context, email, token string, lastActivity, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[email]
	if !ok || rec.Token != token {
		return ErrRecordNotFound
	}
	rec.LastActivityAt = lastActivity
	rec.ExpiresAt = expires
	m.records[email] = rec
	return nil
}

func (m *memoryRemoteStore) Clear(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, email)
	return nil
}
