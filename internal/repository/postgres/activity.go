package postgres

import (
	"context"
	"database/sql"

	"fleetops/internal/domain"
)

// ActivityRepository implements repository.ActivityRepository using PostgreSQL.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{q: db}
}

// Create appends an activity entry.
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	query := `
		INSERT INTO activities (id, subject_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		activity.ID, activity.SubjectID, activity.EventType, activity.Payload, activity.CreatedAt,
	)
	return err
}

// GetBySubjectID retrieves the audit trail for a subject, newest first.
func (r *ActivityRepository) GetBySubjectID(ctx context.Context, subjectID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, subject_id, event_type, payload, created_at
		FROM activities WHERE subject_id = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID, &activity.SubjectID, &activity.EventType, &activity.Payload, &activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, &activity)
	}
	return activities, rows.Err()
}
