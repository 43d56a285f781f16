package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
	"fleetops/internal/service"
)

// ──────────────────────────────────────────────
// RIDE LIFECYCLE STATE MACHINE
// ──────────────────────────────────────────────

func newLifecycleFixture() (*MockRideRepository, *MockLockStore, *MockActivitySink, *service.LifecycleService) {
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()
	sink := NewMockActivitySink()
	svc := service.NewLifecycleService(rideRepo, lockStore, nil, sink, nil)
	return rideRepo, lockStore, sink, svc
}

func addRideWithStatus(repo *MockRideRepository, id string, status domain.RideStatus) *domain.Ride {
	ride := &domain.Ride{
		ID:              id,
		PassengerName:   "Alice",
		Status:          status,
		StatusUpdatedAt: time.Now().Add(-time.Hour),
		CreatedAt:       time.Now().Add(-time.Hour),
		Version:         1,
	}
	repo.AddRide(ride)
	return ride
}

func TestTransition_AllowedEdges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from domain.RideStatus
		to   domain.RideStatus
	}{
		{domain.RideStatusPending, domain.RideStatusRequested},
		{domain.RideStatusPending, domain.RideStatusCancelled},
		{domain.RideStatusRequested, domain.RideStatusAccepted},
		{domain.RideStatusRequested, domain.RideStatusCancelled},
		{domain.RideStatusAccepted, domain.RideStatusDriverArrived},
		{domain.RideStatusAccepted, domain.RideStatusInProgress},
		{domain.RideStatusAccepted, domain.RideStatusCancelled},
		{domain.RideStatusDriverArrived, domain.RideStatusInProgress},
		{domain.RideStatusDriverArrived, domain.RideStatusCancelled},
		{domain.RideStatusInProgress, domain.RideStatusCompleted},
		{domain.RideStatusInProgress, domain.RideStatusCancelled},
	}

	for _, tc := range cases {
		if !service.TransitionAllowed(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestTransition_ForbiddenEdges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from domain.RideStatus
		to   domain.RideStatus
	}{
		{domain.RideStatusPending, domain.RideStatusAccepted},
		{domain.RideStatusPending, domain.RideStatusCompleted},
		{domain.RideStatusRequested, domain.RideStatusInProgress},
		{domain.RideStatusAccepted, domain.RideStatusCompleted},
		{domain.RideStatusDriverArrived, domain.RideStatusCompleted},
		{domain.RideStatusInProgress, domain.RideStatusAccepted},
		{domain.RideStatusCompleted, domain.RideStatusCancelled},
		{domain.RideStatusCancelled, domain.RideStatusRequested},
		{domain.RideStatusRequested, domain.RideStatusRequested},
	}

	for _, tc := range cases {
		if service.TransitionAllowed(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestTransition_StampsTimestampAndStatus(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusInProgress)

	before := time.Now()
	ride, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusCompleted, service.RidePatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status completed, got %s", ride.Status)
	}
	if ride.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}
	if ride.CompletedAt.Before(before) {
		t.Error("CompletedAt should be stamped at transition time")
	}
	if ride.StatusUpdatedAt.Before(before) {
		t.Error("StatusUpdatedAt should move with the transition")
	}

	stored := rideRepo.GetRide("ride-1")
	if stored.Status != domain.RideStatusCompleted {
		t.Errorf("expected persisted status completed, got %s", stored.Status)
	}
}

func TestTransition_TimestampSetOnce(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	ride := addRideWithStatus(rideRepo, "ride-1", domain.RideStatusAccepted)
	stamped := time.Now().Add(-30 * time.Minute)
	ride.AcceptedAt = &stamped

	updated, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusInProgress, service.RidePatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The earlier accepted stamp must survive later transitions.
	if updated.AcceptedAt == nil || !updated.AcceptedAt.Equal(stamped) {
		t.Error("AcceptedAt should not be overwritten by a later transition")
	}
	if updated.StartedAt == nil {
		t.Error("expected StartedAt to be stamped")
	}
}

func TestTransition_TerminalRideIsImmutable(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-done", domain.RideStatusCompleted)
	addRideWithStatus(rideRepo, "ride-gone", domain.RideStatusCancelled)

	for _, id := range []string{"ride-done", "ride-gone"} {
		_, err := svc.Transition(context.Background(), id, domain.RideStatusCancelled, service.RidePatch{})
		if !errors.Is(err, service.ErrImmutableTerminalState) {
			t.Errorf("ride %s: expected ErrImmutableTerminalState, got %v", id, err)
		}
	}
}

func TestTransition_InvalidEdgeLeavesRecordUnchanged(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)

	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusCompleted, service.RidePatch{})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	stored := rideRepo.GetRide("ride-1")
	if stored.Status != domain.RideStatusPending {
		t.Errorf("failed transition must not change status, got %s", stored.Status)
	}
	if stored.Version != 1 {
		t.Errorf("failed transition must not bump version, got %d", stored.Version)
	}
}

func TestTransition_UnknownTargetStatus(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)

	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatus("warping"), service.RidePatch{})
	if !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTransition_EmptyRideID(t *testing.T) {
	t.Parallel()

	_, _, _, svc := newLifecycleFixture()

	_, err := svc.Transition(context.Background(), "", domain.RideStatusRequested, service.RidePatch{})
	if !errors.Is(err, service.ErrInvalidRideID) {
		t.Errorf("expected ErrInvalidRideID, got %v", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	t.Parallel()

	_, _, _, svc := newLifecycleFixture()

	_, err := svc.Transition(context.Background(), "no-such-ride", domain.RideStatusRequested, service.RidePatch{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransition_RetriesOnVersionConflict(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)
	rideRepo.ForceConflicts = 1

	ride, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusRequested, service.RidePatch{})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status requested, got %s", ride.Status)
	}
	if rideRepo.UpdateCallCount != 2 {
		t.Errorf("expected 2 update attempts, got %d", rideRepo.UpdateCallCount)
	}
}

func TestTransition_GivesUpAfterRepeatedConflicts(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)
	rideRepo.ForceConflicts = 10

	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusRequested, service.RidePatch{})
	if !errors.Is(err, repository.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
}

func TestTransition_SinkFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()

	rideRepo, _, sink, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)
	sink.RecordError = ErrMockTimeout

	ride, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusRequested, service.RidePatch{})
	if err != nil {
		t.Fatalf("sink failure must not fail the transition: %v", err)
	}
	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status requested, got %s", ride.Status)
	}
	if sink.RecordCallCount != 1 {
		t.Errorf("expected 1 sink call, got %d", sink.RecordCallCount)
	}
}

func TestTransition_RecordsActivityEvent(t *testing.T) {
	t.Parallel()

	rideRepo, _, sink, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)

	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusCancelled, service.RidePatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink.LastEventType() != "ride.cancelled" {
		t.Errorf("expected ride.cancelled event, got %q", sink.LastEventType())
	}
}

func TestTransition_ReleasesLock(t *testing.T) {
	t.Parallel()

	rideRepo, lockStore, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)

	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusRequested, service.RidePatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lockStore.IsLocked("ride-1") {
		t.Error("lock should be released after the transition")
	}
}

func TestTransition_LockMissDoesNotBlock(t *testing.T) {
	t.Parallel()

	rideRepo, lockStore, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)
	lockStore.ForceAcquireFailure = true

	// The version check is the real guard; a lock miss falls through.
	_, err := svc.Transition(context.Background(), "ride-1", domain.RideStatusRequested, service.RidePatch{})
	if err != nil {
		t.Fatalf("lock miss must not block the transition: %v", err)
	}
}

func TestValidateRideStatus(t *testing.T) {
	t.Parallel()

	if _, err := service.ValidateRideStatus("in_progress"); err != nil {
		t.Errorf("in_progress should be valid: %v", err)
	}
	if _, err := service.ValidateRideStatus("IN_PROGRESS"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Error("status validation is case sensitive")
	}
	if _, err := service.ValidateRideStatus("parked"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Error("unknown status should be rejected")
	}
}
