package repository

import (
	"context"

	"fleetops/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetByDriverID retrieves all vehicles registered to a driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Vehicle, error)
}
