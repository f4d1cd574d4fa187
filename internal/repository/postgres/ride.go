package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MahoudAyman/tuktuk/internal/domain"
	"github.com/MahoudAyman/tuktuk/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, passenger_id, driver_id, pickup_lat, pickup_lng, destination_lat, destination_lng, status, price, distance_km, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var driverID sql.NullString
	if ride.DriverID != "" {
		driverID = sql.NullString{String: ride.DriverID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		driverID,
		ride.Pickup.Lat,
		ride.Pickup.Lng,
		ride.Destination.Lat,
		ride.Destination.Lng,
		ride.Status,
		ride.Price,
		ride.DistanceKm,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// ActiveByPassenger retrieves the passenger's unfinished ride, if any.
func (r *RideRepository) ActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE passenger_id = $1 AND status <> 'finished'
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanRide(r.q.QueryRowContext(ctx, query, passengerID))
}

// ActiveByDriver retrieves the driver's unfinished ride, if any. A pending
// ride with an advisory assignment is not the driver's ride yet; only a
// committed claim makes it theirs.
func (r *RideRepository) ActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1 AND status NOT IN ('pending', 'finished')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanRide(r.q.QueryRowContext(ctx, query, driverID))
}

// ListPendingUnassigned retrieves pending rides with no assigned driver.
func (r *RideRepository) ListPendingUnassigned(ctx context.Context) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status = 'pending' AND driver_id IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRideRow(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}

	return rides, rows.Err()
}

// Claim atomically commits pending -> accepted for the given driver.
// The WHERE clause is the entire concurrency contract: the write lands only
// while the ride is still pending and unassigned or pre-assigned to the
// caller. Concurrent claimers serialize on the row; exactly one wins.
func (r *RideRepository) Claim(ctx context.Context, rideID, driverID string) error {
	query := `
		UPDATE rides
		SET driver_id = $2, status = 'accepted'
		WHERE id = $1
		  AND status = 'pending'
		  AND (driver_id IS NULL OR driver_id = $2)
	`

	result, err := r.q.ExecContext(ctx, query, rideID, driverID)
	if err != nil {
		return err
	}

	return r.checkAffected(ctx, result, rideID)
}

// AdvanceStatus atomically commits from -> to for the assigned driver.
func (r *RideRepository) AdvanceStatus(ctx context.Context, rideID, driverID string, from, to domain.RideStatus) error {
	query := `
		UPDATE rides
		SET status = $4
		WHERE id = $1 AND driver_id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, rideID, driverID, from, to)
	if err != nil {
		return err
	}

	return r.checkAffected(ctx, result, rideID)
}

// UpdateDestination replaces the destination while the ride is still pending.
func (r *RideRepository) UpdateDestination(ctx context.Context, rideID string, dest domain.Location) error {
	query := `
		UPDATE rides
		SET destination_lat = $2, destination_lng = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.ExecContext(ctx, query, rideID, dest.Lat, dest.Lng)
	if err != nil {
		return err
	}

	return r.checkAffected(ctx, result, rideID)
}

// checkAffected distinguishes a missing ride from a lost conditional update.
func (r *RideRepository) checkAffected(ctx context.Context, result sql.Result, rideID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row *sql.Row) (*domain.Ride, error) {
	ride, err := scanRideRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

func scanRideRow(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&ride.Pickup.Lat,
		&ride.Pickup.Lng,
		&ride.Destination.Lat,
		&ride.Destination.Lng,
		&ride.Status,
		&ride.Price,
		&ride.DistanceKm,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}

	return &ride, nil
}
