package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL. A unique index on
// (event_id, account_id) enforces one registration per account per event.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed registration store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, reg Registration) error {
	regID, err := uuid.Parse(reg.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO registrations (id, event_id, account_id, registered_at, checked_in)
        VALUES ($1, $2, $3, $4, false)`, regID, reg.EventID, reg.AccountID, reg.RegisteredAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateRegistration
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Registration, error) {
	regID, err := uuid.Parse(id)
	if err != nil {
		return Registration{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, event_id, account_id, registered_at, checked_in, checked_in_at, distance_meters
        FROM registrations WHERE id = $1`, regID)
	return scanRegistration(row)
}

func (s *PostgresStore) FindByEventAndAccount(ctx context.Context, eventID, accountID string) (Registration, error) {
	row := s.db.QueryRow(ctx, `SELECT id, event_id, account_id, registered_at, checked_in, checked_in_at, distance_meters
        FROM registrations WHERE event_id = $1 AND account_id = $2`, eventID, accountID)
	return scanRegistration(row)
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	rows, err := s.db.Query(ctx, `SELECT id, event_id, account_id, registered_at, checked_in, checked_in_at, distance_meters
        FROM registrations WHERE event_id = $1 ORDER BY registered_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkCheckedIn(ctx context.Context, id string, at time.Time, distanceMeters int) error {
	regID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE registrations SET checked_in = true, checked_in_at = $1, distance_meters = $2
        WHERE id = $3 AND checked_in = false`, at.UTC(), distanceMeters, regID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// distinguish a repeat check-in from a missing row
		if _, err := s.Get(ctx, id); err == nil {
			return ErrAlreadyCheckedIn
		}
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (Registration, error) {
	var (
		id          uuid.UUID
		reg         Registration
		registered  time.Time
		checkedInAt *time.Time
		distance    *int
	)
	if err := row.Scan(&id, &reg.EventID, &reg.AccountID, &registered, &reg.CheckedIn, &checkedInAt, &distance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, ErrNotFound
		}
		return Registration{}, err
	}
	reg.ID = id.String()
	reg.RegisteredAt = registered.UTC()
	if checkedInAt != nil {
		reg.CheckedInAt = checkedInAt.UTC()
	}
	if distance != nil {
		reg.DistanceMeters = *distance
	}
	return reg, nil
}
