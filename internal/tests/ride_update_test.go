package tests

import (
	"context"
	"errors"
	"testing"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// ──────────────────────────────────────────────
// GENERAL RIDE UPDATES (PATCH SEMANTICS)
// ──────────────────────────────────────────────

func TestUpdateRide_BookkeepingOnLiveRide(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusInProgress)

	driverID := "driver-9"
	ride, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{DriverID: &driverID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.DriverID != "driver-9" {
		t.Errorf("expected driver-9, got %q", ride.DriverID)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Errorf("bookkeeping patch must not touch status, got %s", ride.Status)
	}
}

func TestUpdateRide_BookkeepingAllowedOnTerminalRide(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusCompleted)

	// Post-trip rating lands after the ride is already completed.
	rating := 4.5
	ride, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Rating: &rating})
	if err != nil {
		t.Fatalf("rating a completed ride should work: %v", err)
	}

	if ride.Rating == nil || *ride.Rating != 4.5 {
		t.Error("expected rating 4.5 to be recorded")
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("status must stay completed, got %s", ride.Status)
	}
}

func TestUpdateRide_StatusChangeOnTerminalRideRejected(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusCompleted)

	target := domain.RideStatusCancelled
	_, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Status: &target})
	if !errors.Is(err, service.ErrImmutableTerminalState) {
		t.Errorf("expected ErrImmutableTerminalState, got %v", err)
	}
}

func TestUpdateRide_StatusChangeRoutesThroughStateMachine(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusPending)

	// A legal edge works and stamps its timestamp.
	target := domain.RideStatusRequested
	ride, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Status: &target})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.RequestedAt == nil {
		t.Error("expected RequestedAt to be stamped by the routed transition")
	}

	// An illegal edge is rejected by the same table.
	bad := domain.RideStatusCompleted
	_, err = svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Status: &bad})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateRide_SameStatusIsBookkeeping(t *testing.T) {
	t.Parallel()

	rideRepo, _, sink, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusAccepted)

	// A patch that names the current status is not a transition.
	status := domain.RideStatusAccepted
	name := "Bob"
	ride, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Status: &status, PassengerName: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.PassengerName != "Bob" {
		t.Errorf("expected passenger Bob, got %q", ride.PassengerName)
	}
	if sink.LastEventType() != "ride.updated" {
		t.Errorf("expected ride.updated event, got %q", sink.LastEventType())
	}
}

func TestUpdateRide_RejectsOutOfRangeRating(t *testing.T) {
	t.Parallel()

	rideRepo, _, _, svc := newLifecycleFixture()
	addRideWithStatus(rideRepo, "ride-1", domain.RideStatusCompleted)

	for _, bad := range []float64{-1, 5.5, 100} {
		rating := bad
		_, err := svc.UpdateRide(context.Background(), "ride-1", service.RidePatch{Rating: &rating})
		if !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %v: expected ErrInvalidRating, got %v", bad, err)
		}
	}
}
