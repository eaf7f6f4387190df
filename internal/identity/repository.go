package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	SetConfirmed(ctx context.Context, email string, confirmed bool) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, account Account) error {
	accountID, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, email_confirmado, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		accountID, account.Email, account.Name, account.PasswordHash, account.EmailConfirmed, account.CreatedAt.UTC())
	return err
}

// FindByEmail fetches an account by address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, name, password_hash, email_confirmado, created_at
        FROM users WHERE email = $1`, email)
	var (
		id        uuid.UUID
		createdAt time.Time
		account   Account
	)
	if err := row.Scan(&id, &account.Email, &account.Name, &account.PasswordHash, &account.EmailConfirmed, &createdAt); err != nil {
		return Account{}, err
	}
	account.ID = id.String()
	account.CreatedAt = createdAt.UTC()
	return account, nil
}

// SetConfirmed flips the email confirmation flag.
func (r *PostgresRepository) SetConfirmed(ctx context.Context, email string, confirmed bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET email_confirmado = $1 WHERE email = $2`, confirmed, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("account not found")
	}
	return nil
}
