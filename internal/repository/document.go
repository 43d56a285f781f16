package repository

import (
	"context"

	"fleetops/internal/domain"
)

// DocumentRepository defines the persistence operations for driver documents.
type DocumentRepository interface {
	// Create adds a new document in pending state.
	Create(ctx context.Context, doc *domain.DriverDocument) error

	// GetByID retrieves a document by ID.
	GetByID(ctx context.Context, id string) (*domain.DriverDocument, error)

	// GetByDriverID retrieves all documents submitted by a driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.DriverDocument, error)

	// Update updates an existing document.
	Update(ctx context.Context, doc *domain.DriverDocument) error
}
