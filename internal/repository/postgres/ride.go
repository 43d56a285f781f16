package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

const defaultRideQueryLimit = 100

const rideColumns = `id, driver_id, passenger_name, pickup_address, dropoff_address,
		pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, ride_type,
		estimated_fare, actual_fare, driver_earnings, commission,
		distance_km, duration_minutes, status, status_updated_at,
		rating, cancel_reason, cancelled_by,
		requested_at, accepted_at, driver_arrived_at, started_at, completed_at, cancelled_at,
		created_at, version`

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

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.PassengerName,
		ride.PickupAddress,
		ride.DropoffAddress,
		nullFloat(ride.PickupLat),
		nullFloat(ride.PickupLng),
		nullFloat(ride.DropoffLat),
		nullFloat(ride.DropoffLng),
		ride.RideType,
		ride.EstimatedFare,
		nullFloat(ride.ActualFare),
		nullFloat(ride.DriverEarnings),
		nullFloat(ride.Commission),
		ride.DistanceKm,
		nullInt(ride.DurationMinutes),
		ride.Status,
		ride.StatusUpdatedAt,
		nullFloat(ride.Rating),
		nullString(ride.CancelReason),
		nullString(ride.CancelledBy),
		nullTime(ride.RequestedAt),
		nullTime(ride.AcceptedAt),
		nullTime(ride.DriverArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.CreatedAt,
		ride.Version,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// Update writes the ride back guarded by its version. The WHERE clause
// doubles as the compare-and-set: zero rows affected means either the
// ride vanished or a concurrent writer bumped the version first.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_id = $1, passenger_name = $2, pickup_address = $3, dropoff_address = $4,
			pickup_lat = $5, pickup_lng = $6, dropoff_lat = $7, dropoff_lng = $8,
			ride_type = $9, estimated_fare = $10, actual_fare = $11,
			driver_earnings = $12, commission = $13, distance_km = $14,
			duration_minutes = $15, status = $16, status_updated_at = $17,
			rating = $18, cancel_reason = $19, cancelled_by = $20,
			requested_at = $21, accepted_at = $22, driver_arrived_at = $23,
			started_at = $24, completed_at = $25, cancelled_at = $26,
			version = version + 1
		WHERE id = $27 AND version = $28
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.DriverID,
		ride.PassengerName,
		ride.PickupAddress,
		ride.DropoffAddress,
		nullFloat(ride.PickupLat),
		nullFloat(ride.PickupLng),
		nullFloat(ride.DropoffLat),
		nullFloat(ride.DropoffLng),
		ride.RideType,
		ride.EstimatedFare,
		nullFloat(ride.ActualFare),
		nullFloat(ride.DriverEarnings),
		nullFloat(ride.Commission),
		ride.DistanceKm,
		nullInt(ride.DurationMinutes),
		ride.Status,
		ride.StatusUpdatedAt,
		nullFloat(ride.Rating),
		nullString(ride.CancelReason),
		nullString(ride.CancelledBy),
		nullTime(ride.RequestedAt),
		nullTime(ride.AcceptedAt),
		nullTime(ride.DriverArrivedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.ID,
		ride.Version,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a vanished row from a lost race.
		var exists bool
		checkErr := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, ride.ID).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	ride.Version++
	return nil
}

// Query retrieves rides matching the filter, newest first.
func (r *RideRepository) Query(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.DriverID != "" {
		addCondition("driver_id = $%d", filter.DriverID)
	}
	if !filter.From.IsZero() {
		addCondition("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addCondition("created_at < $%d", filter.To)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(passenger_name ILIKE $%d OR pickup_address ILIKE $%d OR dropoff_address ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + rideColumns + ` FROM rides`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRideQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var (
		ride                                           domain.Ride
		pickupLat, pickupLng, dropoffLat, dropoffLng   sql.NullFloat64
		actualFare, driverEarnings, commission, rating sql.NullFloat64
		durationMinutes                                sql.NullInt64
		cancelReason, cancelledBy                      sql.NullString
		requestedAt, acceptedAt, driverArrivedAt       sql.NullTime
		startedAt, completedAt, cancelledAt            sql.NullTime
	)

	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.PassengerName,
		&ride.PickupAddress,
		&ride.DropoffAddress,
		&pickupLat,
		&pickupLng,
		&dropoffLat,
		&dropoffLng,
		&ride.RideType,
		&ride.EstimatedFare,
		&actualFare,
		&driverEarnings,
		&commission,
		&ride.DistanceKm,
		&durationMinutes,
		&ride.Status,
		&ride.StatusUpdatedAt,
		&rating,
		&cancelReason,
		&cancelledBy,
		&requestedAt,
		&acceptedAt,
		&driverArrivedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&ride.CreatedAt,
		&ride.Version,
	)
	if err != nil {
		return nil, err
	}

	ride.PickupLat = floatPtr(pickupLat)
	ride.PickupLng = floatPtr(pickupLng)
	ride.DropoffLat = floatPtr(dropoffLat)
	ride.DropoffLng = floatPtr(dropoffLng)
	ride.ActualFare = floatPtr(actualFare)
	ride.DriverEarnings = floatPtr(driverEarnings)
	ride.Commission = floatPtr(commission)
	ride.Rating = floatPtr(rating)
	if durationMinutes.Valid {
		v := int(durationMinutes.Int64)
		ride.DurationMinutes = &v
	}
	if cancelReason.Valid {
		ride.CancelReason = cancelReason.String
	}
	if cancelledBy.Valid {
		ride.CancelledBy = cancelledBy.String
	}
	ride.RequestedAt = timePtr(requestedAt)
	ride.AcceptedAt = timePtr(acceptedAt)
	ride.DriverArrivedAt = timePtr(driverArrivedAt)
	ride.StartedAt = timePtr(startedAt)
	ride.CompletedAt = timePtr(completedAt)
	ride.CancelledAt = timePtr(cancelledAt)

	return &ride, nil
}
