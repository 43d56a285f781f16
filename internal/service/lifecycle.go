package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetops/internal/domain"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
)

const (
	storeTimeout      = 5 * time.Second
	sinkTimeout       = 2 * time.Second
	transitionRetries = 3
	rideLockTTL       = 10 * time.Second
)

// ActivitySink receives lifecycle events for audit purposes. Calls are
// best-effort: failures are logged by the caller and never propagated.
type ActivitySink interface {
	Record(ctx context.Context, subjectID, eventType string, payload map[string]any) error
}

// RidePatch is a typed bag of optional field updates merged into a ride.
// Nil fields are left untouched.
type RidePatch struct {
	Status          *domain.RideStatus
	DriverID        *string
	PassengerName   *string
	ActualFare      *float64
	DriverEarnings  *float64
	Commission      *float64
	DurationMinutes *int
	Rating          *float64
	CancelReason    *string
	CancelledBy     *string
}

func (p RidePatch) validate() error {
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return ErrInvalidRating
	}
	for _, v := range []*float64{p.ActualFare, p.DriverEarnings, p.Commission} {
		if v != nil && *v < 0 {
			return ErrInvalidFareInput
		}
	}
	if p.DurationMinutes != nil && *p.DurationMinutes < 0 {
		return ErrInvalidFareInput
	}
	return nil
}

// allowedTransitions is the ride state machine. Terminal states have no
// outgoing edges.
var allowedTransitions = map[domain.RideStatus][]domain.RideStatus{
	domain.RideStatusPending:       {domain.RideStatusRequested, domain.RideStatusCancelled},
	domain.RideStatusRequested:     {domain.RideStatusAccepted, domain.RideStatusCancelled},
	domain.RideStatusAccepted:      {domain.RideStatusDriverArrived, domain.RideStatusInProgress, domain.RideStatusCancelled},
	domain.RideStatusDriverArrived: {domain.RideStatusInProgress, domain.RideStatusCancelled},
	domain.RideStatusInProgress:    {domain.RideStatusCompleted, domain.RideStatusCancelled},
	domain.RideStatusCompleted:     {},
	domain.RideStatusCancelled:     {},
}

// TransitionAllowed reports whether the state machine permits from -> to.
func TransitionAllowed(from, to domain.RideStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateRideStatus validates a status string against the state set.
func ValidateRideStatus(status string) (domain.RideStatus, error) {
	s := domain.RideStatus(status)
	if _, ok := allowedTransitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// LifecycleService enforces the ride state machine. Every status change in
// the system flows through Transition; UpdateRide handles non-status
// bookkeeping on otherwise frozen records.
type LifecycleService struct {
	rideRepo  repository.RideRepository
	lockStore redis.LockStoreInterface
	cache     *redis.CacheStore
	sink      ActivitySink
	logger    *zap.Logger
}

// NewLifecycleService creates a new LifecycleService. lockStore, cache,
// and sink may be nil; the service degrades to repo-only operation.
func NewLifecycleService(
	rideRepo repository.RideRepository,
	lockStore redis.LockStoreInterface,
	cache *redis.CacheStore,
	sink ActivitySink,
	logger *zap.Logger,
) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		rideRepo:  rideRepo,
		lockStore: lockStore,
		cache:     cache,
		sink:      sink,
		logger:    logger,
	}
}

// Transition moves a ride to the target status, merging the patch and
// stamping the lifecycle timestamp associated with the target. The write
// is guarded by the ride's version; conflicts are retried against a fresh
// read. Exactly one persisted write per successful call, plus one
// best-effort activity record.
func (s *LifecycleService) Transition(ctx context.Context, rideID string, target domain.RideStatus, patch RidePatch) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if _, ok := allowedTransitions[target]; !ok {
		return nil, ErrInvalidStatus
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	// Per-ride lock reduces contention between concurrent transitions.
	// Correctness does not depend on it; the version check below does the
	// real work, so a lock miss or Redis error falls through.
	if s.lockStore != nil {
		if locked, err := s.lockStore.AcquireRideLock(ctx, rideID, rideLockTTL); err == nil && locked {
			defer func() { _ = s.lockStore.ReleaseRideLock(ctx, rideID) }()
		}
	}

	var ride *domain.Ride
	for attempt := 0; attempt < transitionRetries; attempt++ {
		current, err := s.getRide(ctx, rideID)
		if err != nil {
			return nil, err
		}

		if current.Status.IsTerminal() {
			return nil, ErrImmutableTerminalState
		}
		if !TransitionAllowed(current.Status, target) {
			return nil, ErrInvalidTransition
		}

		applyPatch(current, patch)
		stampTransition(current, target, time.Now())

		err = s.updateRide(ctx, current)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ride = current
		break
	}
	if ride == nil {
		return nil, repository.ErrVersionConflict
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, rideID)
	}

	s.record(ctx, ride.ID, "ride."+string(target), map[string]any{
		"status":    string(ride.Status),
		"driver_id": ride.DriverID,
	})

	return ride, nil
}

// UpdateRide applies a general field patch to a ride. A patch that changes
// status is routed through the state machine; on a terminal ride such a
// patch is rejected with ErrImmutableTerminalState. Patches that leave
// status alone are permitted even on terminal rides, which covers
// auxiliary bookkeeping like post-trip ratings.
func (s *LifecycleService) UpdateRide(ctx context.Context, rideID string, patch RidePatch) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if err := patch.validate(); err != nil {
		return nil, err
	}

	current, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != current.Status {
		// Transition handles the terminal guard and transition table.
		return s.Transition(ctx, rideID, *patch.Status, patch)
	}

	var ride *domain.Ride
	for attempt := 0; attempt < transitionRetries; attempt++ {
		applyPatch(current, patch)

		err = s.updateRide(ctx, current)
		if errors.Is(err, repository.ErrVersionConflict) {
			current, err = s.getRide(ctx, rideID)
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		ride = current
		break
	}
	if ride == nil {
		return nil, repository.ErrVersionConflict
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, rideID)
	}

	s.record(ctx, ride.ID, "ride.updated", map[string]any{
		"status": string(ride.Status),
	})

	return ride, nil
}

// applyPatch merges non-nil patch fields into the ride. Status is handled
// by stampTransition, never here.
func applyPatch(ride *domain.Ride, patch RidePatch) {
	if patch.DriverID != nil {
		ride.DriverID = *patch.DriverID
	}
	if patch.PassengerName != nil {
		ride.PassengerName = *patch.PassengerName
	}
	if patch.ActualFare != nil {
		ride.ActualFare = patch.ActualFare
	}
	if patch.DriverEarnings != nil {
		ride.DriverEarnings = patch.DriverEarnings
	}
	if patch.Commission != nil {
		ride.Commission = patch.Commission
	}
	if patch.DurationMinutes != nil {
		ride.DurationMinutes = patch.DurationMinutes
	}
	if patch.Rating != nil {
		ride.Rating = patch.Rating
	}
	if patch.CancelReason != nil {
		ride.CancelReason = *patch.CancelReason
	}
	if patch.CancelledBy != nil {
		ride.CancelledBy = *patch.CancelledBy
	}
}

// stampTransition sets the new status and the timestamp tied to it.
// Each lifecycle timestamp is written once and never overwritten.
func stampTransition(ride *domain.Ride, target domain.RideStatus, now time.Time) {
	ride.Status = target
	ride.StatusUpdatedAt = now

	ts := now
	switch target {
	case domain.RideStatusRequested:
		if ride.RequestedAt == nil {
			ride.RequestedAt = &ts
		}
	case domain.RideStatusAccepted:
		if ride.AcceptedAt == nil {
			ride.AcceptedAt = &ts
		}
	case domain.RideStatusDriverArrived:
		if ride.DriverArrivedAt == nil {
			ride.DriverArrivedAt = &ts
		}
	case domain.RideStatusInProgress:
		if ride.StartedAt == nil {
			ride.StartedAt = &ts
		}
	case domain.RideStatusCompleted:
		if ride.CompletedAt == nil {
			ride.CompletedAt = &ts
		}
	case domain.RideStatusCancelled:
		if ride.CancelledAt == nil {
			ride.CancelledAt = &ts
		}
	}
}

// getRide reads the current record with a bounded timeout.
func (s *LifecycleService) getRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	readCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.rideRepo.GetByID(readCtx, rideID)
}

// updateRide writes the record with a bounded timeout. A timed-out write
// is ambiguous: it may or may not have landed, so it surfaces as
// ErrUnknownOutcome and the caller must re-query before acting again.
func (s *LifecycleService) updateRide(ctx context.Context, ride *domain.Ride) error {
	writeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := s.rideRepo.Update(writeCtx, ride)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnknownOutcome, err)
	}
	return err
}

// record emits a lifecycle event to the activity sink. Sink failures are
// logged and swallowed; audit writes must not block business operations.
func (s *LifecycleService) record(ctx context.Context, subjectID, eventType string, payload map[string]any) {
	if s.sink == nil {
		return
	}

	sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()

	if err := s.sink.Record(sinkCtx, subjectID, eventType, payload); err != nil {
		s.logger.Warn("activity sink record failed",
			zap.String("subject_id", subjectID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
