package repository

import (
	"context"
	"time"

	"fleetops/internal/domain"
)

// RideFilter narrows a ride query. Zero values are ignored.
type RideFilter struct {
	Status   domain.RideStatus
	DriverID string
	From     time.Time // created_at lower bound, inclusive
	To       time.Time // created_at upper bound, exclusive
	Search   string    // matches passenger name and addresses
	Limit    int       // 0 uses the repository default
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// Update writes the ride back, guarded by its Version field.
	// Returns ErrVersionConflict if a concurrent writer got there first.
	// On success the ride's Version is incremented in place.
	Update(ctx context.Context, ride *domain.Ride) error

	// Query retrieves rides matching the filter, newest first.
	Query(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)
}
