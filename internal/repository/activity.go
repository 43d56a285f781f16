package repository

import (
	"context"

	"fleetops/internal/domain"
)

// ActivityRepository defines the persistence operations for the audit trail.
type ActivityRepository interface {
	// Create appends an activity entry.
	Create(ctx context.Context, activity *domain.Activity) error

	// GetBySubjectID retrieves the audit trail for a subject, newest first.
	GetBySubjectID(ctx context.Context, subjectID string, limit int) ([]*domain.Activity, error)
}
