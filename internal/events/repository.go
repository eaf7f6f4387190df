package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

// Repository persists events.
type Repository interface {
	Create(ctx context.Context, event Event) error
	Get(ctx context.Context, id string) (Event, error)
	List(ctx context.Context) ([]Event, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// PostgresRepository stores events in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an event record.
func (r *PostgresRepository) Create(ctx context.Context, event Event) error {
	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO events (id, title, description, lat, lon, radius_meters, starts_at, ends_at, price_cents, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		eventID, event.Title, event.Description, event.Location.Lat, event.Location.Lon, event.RadiusMeters,
		event.StartsAt.UTC(), event.EndsAt.UTC(), event.PriceCents, event.Status, event.CreatedAt.UTC())
	return err
}

// Get fetches an event by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return Event{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, title, description, lat, lon, radius_meters, starts_at, ends_at, price_cents, status, created_at
        FROM events WHERE id = $1`, eventID)
	return scanEvent(row)
}

// List returns all events ordered by start time.
func (r *PostgresRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, lat, lon, radius_meters, starts_at, ends_at, price_cents, status, created_at
        FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// UpdateStatus changes the event lifecycle status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE events SET status = $1 WHERE id = $2`, status, eventID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		id                 uuid.UUID
		ev                 Event
		starts, ends, made time.Time
		lat, lon           float64
	)
	if err := row.Scan(&id, &ev.Title, &ev.Description, &lat, &lon, &ev.RadiusMeters, &starts, &ends, &ev.PriceCents, &ev.Status, &made); err != nil {
		return Event{}, err
	}
	ev.ID = id.String()
	ev.Location = geo.Point{Lat: lat, Lon: lon}
	ev.StartsAt = starts.UTC()
	ev.EndsAt = ends.UTC()
	ev.CreatedAt = made.UTC()
	return ev, nil
}
