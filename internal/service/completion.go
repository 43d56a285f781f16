package service

import (
	"context"
	"time"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// Driver earnings split: 80% to the driver, 20% platform commission.
// Policy constants, not configurable.
const (
	driverEarningsShare = 0.8
	commissionShare     = 0.2
)

// CompletionService resolves ride completion and cancellation: it checks
// status preconditions, derives billing fields, and delegates the actual
// state change to the lifecycle engine.
type CompletionService struct {
	rideRepo  repository.RideRepository
	lifecycle *LifecycleService
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(rideRepo repository.RideRepository, lifecycle *LifecycleService) *CompletionService {
	return &CompletionService{
		rideRepo:  rideRepo,
		lifecycle: lifecycle,
	}
}

// CompleteOverrides are caller-supplied values that take precedence over
// the derived billing fields.
type CompleteOverrides struct {
	ActualFare      *float64
	DriverEarnings  *float64
	Commission      *float64
	DurationMinutes *int
	Rating          *float64
}

// Complete finishes a ride: resolves the actual fare, splits earnings and
// commission when not supplied, derives trip duration, then transitions
// the ride to completed. Retrying after a successful completion returns
// ErrNotCompletable, never a duplicate billing write.
func (s *CompletionService) Complete(ctx context.Context, rideID string, overrides CompleteOverrides) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusInProgress && ride.Status != domain.RideStatusDriverArrived {
		return nil, ErrNotCompletable
	}

	patch := RidePatch{
		ActualFare:      overrides.ActualFare,
		DriverEarnings:  overrides.DriverEarnings,
		Commission:      overrides.Commission,
		DurationMinutes: overrides.DurationMinutes,
		Rating:          overrides.Rating,
	}

	// Resolve the fare: override wins, then the recorded actual fare,
	// then the original estimate.
	actualFare := overrides.ActualFare
	if actualFare == nil {
		actualFare = ride.ActualFare
	}
	if actualFare == nil {
		fare := ride.EstimatedFare
		actualFare = &fare
	}
	patch.ActualFare = actualFare

	if *actualFare >= 0 && ride.DriverEarnings == nil && overrides.DriverEarnings == nil {
		earnings := round2(*actualFare * driverEarningsShare)
		commission := round2(*actualFare * commissionShare)
		patch.DriverEarnings = &earnings
		patch.Commission = &commission
	}

	if overrides.DurationMinutes == nil && ride.DurationMinutes == nil && ride.StartedAt != nil {
		minutes := int(time.Since(*ride.StartedAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		patch.DurationMinutes = &minutes
	}

	return s.lifecycle.Transition(ctx, rideID, domain.RideStatusCompleted, patch)
}

// Cancel aborts a ride, recording who cancelled and why. Retrying after a
// successful cancellation returns ErrNotCancellable.
func (s *CompletionService) Cancel(ctx context.Context, rideID, reason, cancelledBy string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status.IsTerminal() {
		return nil, ErrNotCancellable
	}

	patch := RidePatch{
		CancelReason: &reason,
		CancelledBy:  &cancelledBy,
	}

	return s.lifecycle.Transition(ctx, rideID, domain.RideStatusCancelled, patch)
}
