package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDocumentID is returned when document ID is empty.
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrInvalidStatus is returned when a target status is not a member of
	// the ride state set.
	ErrInvalidStatus = errors.New("invalid ride status")

	// ErrInvalidRideType is returned when a ride type is not a member of
	// the ride type set.
	ErrInvalidRideType = errors.New("invalid ride type")

	// ErrInvalidTransition is returned when the target status is not
	// reachable from the ride's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrImmutableTerminalState is returned when an update attempts to
	// change the status of a completed or cancelled ride.
	ErrImmutableTerminalState = errors.New("ride is in a terminal state")

	// ErrNotCompletable is returned when a ride's current status does not
	// permit completion.
	ErrNotCompletable = errors.New("ride cannot be completed in current state")

	// ErrNotCancellable is returned when a ride's current status does not
	// permit cancellation.
	ErrNotCancellable = errors.New("ride cannot be cancelled in current state")

	// ErrInvalidFareInput is returned when fare estimation receives a
	// negative distance, duration, or surge multiplier.
	ErrInvalidFareInput = errors.New("invalid fare input")

	// ErrInvalidRating is returned when a rating is outside 0-5.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrUnknownOutcome is returned when a store write timed out and the
	// resulting state is ambiguous. Callers must re-query before retrying.
	ErrUnknownOutcome = errors.New("store write outcome unknown")

	// ErrDriverNotVerifiable is returned when verification preconditions
	// are not met (pending documents or wrong status).
	ErrDriverNotVerifiable = errors.New("driver cannot be verified in current state")
)
