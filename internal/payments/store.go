package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrChargeNotFound indicates no such charge exists.
	ErrChargeNotFound = errors.New("payments: charge not found")

	// ErrChargeExists indicates the registration already has a charge.
	ErrChargeExists = errors.New("payments: charge already exists for registration")
)

// Store persists charges.
type Store interface {
	Create(ctx context.Context, charge Charge) error
	Get(ctx context.Context, id string) (Charge, error)
	FindByRegistration(ctx context.Context, registrationID string) (Charge, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
}

// PostgresStore stores charges in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed charge store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, charge Charge) error {
	chargeID, err := uuid.Parse(charge.ID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO charges (id, registration_id, tx_id, amount_cents, payload, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		chargeID, charge.RegistrationID, charge.TxID, charge.AmountCents, charge.Payload, charge.Status, charge.CreatedAt.UTC())
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Charge, error) {
	chargeID, err := uuid.Parse(id)
	if err != nil {
		return Charge{}, ErrChargeNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, registration_id, tx_id, amount_cents, payload, status, created_at, paid_at
        FROM charges WHERE id = $1`, chargeID)
	return scanCharge(row)
}

func (s *PostgresStore) FindByRegistration(ctx context.Context, registrationID string) (Charge, error) {
	row := s.db.QueryRow(ctx, `SELECT id, registration_id, tx_id, amount_cents, payload, status, created_at, paid_at
        FROM charges WHERE registration_id = $1`, registrationID)
	return scanCharge(row)
}

func (s *PostgresStore) MarkPaid(ctx context.Context, id string, at time.Time) error {
	chargeID, err := uuid.Parse(id)
	if err != nil {
		return ErrChargeNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE charges SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4`,
		StatusPaid, at.UTC(), chargeID, StatusCreated)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrChargeNotFound
	}
	return nil
}

func scanCharge(row pgx.Row) (Charge, error) {
	var (
		id      uuid.UUID
		charge  Charge
		created time.Time
		paidAt  *time.Time
	)
	if err := row.Scan(&id, &charge.RegistrationID, &charge.TxID, &charge.AmountCents, &charge.Payload, &charge.Status, &created, &paidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Charge{}, ErrChargeNotFound
		}
		return Charge{}, err
	}
	charge.ID = id.String()
	charge.CreatedAt = created.UTC()
	if paidAt != nil {
		charge.PaidAt = paidAt.UTC()
	}
	return charge, nil
}
