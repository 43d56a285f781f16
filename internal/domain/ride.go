package domain

import "time"

// RideStatus represents the current lifecycle state of a ride.
type RideStatus string

const (
	RideStatusPending       RideStatus = "pending"
	RideStatusRequested     RideStatus = "requested"
	RideStatusAccepted      RideStatus = "accepted"
	RideStatusDriverArrived RideStatus = "driver_arrived"
	RideStatusInProgress    RideStatus = "in_progress"
	RideStatusCompleted     RideStatus = "completed"
	RideStatusCancelled     RideStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RideType represents the service class of a ride.
type RideType string

const (
	RideTypeStandard RideType = "standard"
	RideTypePremium  RideType = "premium"
	RideTypeXL       RideType = "xl"
	RideTypeShared   RideType = "shared"
	RideTypeDelivery RideType = "delivery"
)

// Ride represents a trip record tracked from creation to a terminal outcome.
// Lifecycle timestamps are nullable and set exactly once, when the
// corresponding transition occurs. Version backs the optimistic-concurrency
// check in the ride repository.
type Ride struct {
	ID             string
	DriverID       string
	PassengerName  string
	PickupAddress  string
	DropoffAddress string
	PickupLat      *float64
	PickupLng      *float64
	DropoffLat     *float64
	DropoffLng     *float64
	RideType       RideType

	EstimatedFare  float64
	ActualFare     *float64
	DriverEarnings *float64
	Commission     *float64

	DistanceKm      float64
	DurationMinutes *int

	Status          RideStatus
	StatusUpdatedAt time.Time

	Rating       *float64
	CancelReason string
	CancelledBy  string

	RequestedAt     *time.Time
	AcceptedAt      *time.Time
	DriverArrivedAt *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time

	CreatedAt time.Time
	Version   int64
}
