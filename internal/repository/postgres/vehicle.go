package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// VehicleRepository implements repository.VehicleRepository using PostgreSQL.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new VehicleRepository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, driver_id, plate, model, capacity, ride_class, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID, vehicle.DriverID, vehicle.Plate, vehicle.Model,
		vehicle.Capacity, vehicle.RideClass, vehicle.CreatedAt,
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, driver_id, plate, model, capacity, ride_class, created_at
		FROM vehicles WHERE id = $1
	`
	var vehicle domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID, &vehicle.DriverID, &vehicle.Plate, &vehicle.Model,
		&vehicle.Capacity, &vehicle.RideClass, &vehicle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// GetByDriverID retrieves all vehicles registered to a driver.
func (r *VehicleRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, driver_id, plate, model, capacity, ride_class, created_at
		FROM vehicles WHERE driver_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := rows.Scan(
			&vehicle.ID, &vehicle.DriverID, &vehicle.Plate, &vehicle.Model,
			&vehicle.Capacity, &vehicle.RideClass, &vehicle.CreatedAt,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}
	return vehicles, rows.Err()
}
