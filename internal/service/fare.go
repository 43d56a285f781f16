package service

import (
	"math"

	"fleetops/internal/domain"
)

// Fare constants. These are policy values reproduced exactly for billing
// compatibility; they are not configurable.
const (
	fareBase          = 5.00
	farePerKmRate     = 1.50
	farePerMinuteRate = 0.25
)

// rideTypeMultipliers maps a ride type to its fare multiplier.
// Unrecognized types fall back to 1.0 rather than erroring.
var rideTypeMultipliers = map[domain.RideType]float64{
	domain.RideTypeStandard: 1.0,
	domain.RideTypePremium:  1.5,
	domain.RideTypeXL:       1.3,
	domain.RideTypeShared:   0.8,
	domain.RideTypeDelivery: 0.9,
}

// FareBreakdown is the itemized result of a fare estimate.
// All monetary fields are rounded to 2 decimal places, half-up.
type FareBreakdown struct {
	BaseFare        float64 `json:"base_fare"`
	DistanceFare    float64 `json:"distance_fare"`
	TimeFare        float64 `json:"time_fare"`
	Subtotal        float64 `json:"subtotal"`
	SurgeFare       float64 `json:"surge_fare"`
	TotalFare       float64 `json:"total_fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	RideType        string  `json:"ride_type"`
}

// EstimateFare computes the fare breakdown for the given trip parameters.
// Pure: no I/O, deterministic, and total only for non-negative inputs.
func EstimateFare(distanceKm, durationMinutes float64, rideType domain.RideType, surgeMultiplier float64) (*FareBreakdown, error) {
	if distanceKm < 0 || durationMinutes < 0 || surgeMultiplier < 0 {
		return nil, ErrInvalidFareInput
	}

	multiplier, ok := rideTypeMultipliers[rideType]
	if !ok {
		multiplier = 1.0
	}

	distanceFare := distanceKm * farePerKmRate * multiplier
	timeFare := durationMinutes * farePerMinuteRate * multiplier
	subtotal := fareBase + distanceFare + timeFare

	surgeFare := 0.0
	if surgeMultiplier > 1 {
		surgeFare = subtotal * (surgeMultiplier - 1)
	}

	return &FareBreakdown{
		BaseFare:        round2(fareBase),
		DistanceFare:    round2(distanceFare),
		TimeFare:        round2(timeFare),
		Subtotal:        round2(subtotal),
		SurgeFare:       round2(surgeFare),
		TotalFare:       round2(subtotal + surgeFare),
		SurgeMultiplier: surgeMultiplier,
		RideType:        string(rideType),
	}, nil
}

// round2 rounds to 2 decimal places, half-up. Inputs are non-negative.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
