package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

const driverColumns = `id, name, phone, tuktuk_number, status, rating, total_rides, lat, lng, created_at`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.TukTukNumber,
		driver.Status,
		driver.Rating,
		driver.TotalRides,
		driver.Location.Lat,
		driver.Location.Lng,
		driver.CreatedAt,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetAvailable retrieves all drivers currently marked available.
func (r *DriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE status = 'available' ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}

	return drivers, rows.Err()
}

// UpdateStatus updates a driver's availability.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateLocation updates a driver's last-known position.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	query := `UPDATE drivers SET lat = $2, lng = $3 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, loc.Lat, loc.Lng)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// RecordCompletedRide increments the driver's ride count and returns them
// to the available pool.
func (r *DriverRepository) RecordCompletedRide(ctx context.Context, id string) error {
	query := `
		UPDATE drivers
		SET total_rides = total_rides + 1, status = 'available'
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.TukTukNumber,
		&driver.Status,
		&driver.Rating,
		&driver.TotalRides,
		&driver.Location.Lat,
		&driver.Location.Lng,
		&driver.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
