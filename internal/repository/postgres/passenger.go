package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `
		INSERT INTO passengers (id, name, phone, lat, lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		passenger.ID,
		passenger.Name,
		passenger.Phone,
		passenger.Location.Lat,
		passenger.Location.Lng,
		passenger.CreatedAt,
	)

	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT id, name, phone, lat, lng, created_at FROM passengers WHERE id = $1`

	var passenger domain.Passenger
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&passenger.ID,
		&passenger.Name,
		&passenger.Phone,
		&passenger.Location.Lat,
		&passenger.Location.Lng,
		&passenger.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &passenger, nil
}

// UpdateLocation updates a passenger's last-known position.
func (r *PassengerRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	query := `UPDATE passengers SET lat = $2, lng = $3 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, loc.Lat, loc.Lng)
	if err != nil {
		return err
	}

	return requireRow(result)
}
