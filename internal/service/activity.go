package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// ActivityService is the store-backed ActivitySink: lifecycle events and
// administrative mutations land as audit-trail rows the dashboard lists.
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

// Ensure ActivityService implements ActivitySink.
var _ ActivitySink = (*ActivityService)(nil)

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends one audit entry. Callers treat failures as non-fatal.
func (s *ActivityService) Record(ctx context.Context, subjectID, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return s.activityRepo.Create(ctx, &domain.Activity{
		ID:        uuid.New().String(),
		SubjectID: subjectID,
		EventType: eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	})
}

// Trail returns the audit trail for a subject, newest first.
func (s *ActivityService) Trail(ctx context.Context, subjectID string, limit int) ([]*domain.Activity, error) {
	return s.activityRepo.GetBySubjectID(ctx, subjectID, limit)
}
