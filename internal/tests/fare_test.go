package tests

import (
	"errors"
	"testing"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// ──────────────────────────────────────────────
// FARE ESTIMATION
// ──────────────────────────────────────────────

func TestEstimateFare_StandardNoSurge(t *testing.T) {
	t.Parallel()

	// 10 km, 20 min standard: 5.00 + 15.00 + 5.00 = 25.00
	fare, err := service.EstimateFare(10, 20, domain.RideTypeStandard, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fare.BaseFare != 5.00 {
		t.Errorf("expected base 5.00, got %.2f", fare.BaseFare)
	}
	if fare.DistanceFare != 15.00 {
		t.Errorf("expected distance 15.00, got %.2f", fare.DistanceFare)
	}
	if fare.TimeFare != 5.00 {
		t.Errorf("expected time 5.00, got %.2f", fare.TimeFare)
	}
	if fare.Subtotal != 25.00 {
		t.Errorf("expected subtotal 25.00, got %.2f", fare.Subtotal)
	}
	if fare.SurgeFare != 0 {
		t.Errorf("expected no surge fare, got %.2f", fare.SurgeFare)
	}
	if fare.TotalFare != 25.00 {
		t.Errorf("expected total 25.00, got %.2f", fare.TotalFare)
	}
}

func TestEstimateFare_PremiumWithSurge(t *testing.T) {
	t.Parallel()

	// 10 km, 20 min premium at 2.0x surge:
	// distance 10*1.50*1.5 = 22.50, time 20*0.25*1.5 = 7.50
	// subtotal 35.00, surge 35.00, total 70.00
	fare, err := service.EstimateFare(10, 20, domain.RideTypePremium, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fare.DistanceFare != 22.50 {
		t.Errorf("expected distance 22.50, got %.2f", fare.DistanceFare)
	}
	if fare.TimeFare != 7.50 {
		t.Errorf("expected time 7.50, got %.2f", fare.TimeFare)
	}
	if fare.Subtotal != 35.00 {
		t.Errorf("expected subtotal 35.00, got %.2f", fare.Subtotal)
	}
	if fare.SurgeFare != 35.00 {
		t.Errorf("expected surge 35.00, got %.2f", fare.SurgeFare)
	}
	if fare.TotalFare != 70.00 {
		t.Errorf("expected total 70.00, got %.2f", fare.TotalFare)
	}
}

func TestEstimateFare_TypeMultipliers(t *testing.T) {
	t.Parallel()

	// 4 km, 8 min: unmultiplied distance 6.00 + time 2.00 = 8.00
	cases := []struct {
		rideType domain.RideType
		total    float64
	}{
		{domain.RideTypeStandard, 13.00},
		{domain.RideTypePremium, 17.00},
		{domain.RideTypeXL, 15.40},
		{domain.RideTypeShared, 11.40},
		{domain.RideTypeDelivery, 12.20},
		{domain.RideType("hovercraft"), 13.00}, // unknown falls back to 1.0
	}

	for _, tc := range cases {
		fare, err := service.EstimateFare(4, 8, tc.rideType, 1.0)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.rideType, err)
		}
		if fare.TotalFare != tc.total {
			t.Errorf("%s: expected total %.2f, got %.2f", tc.rideType, tc.total, fare.TotalFare)
		}
	}
}

func TestEstimateFare_SurgeBelowOneIsIgnored(t *testing.T) {
	t.Parallel()

	fare, err := service.EstimateFare(10, 20, domain.RideTypeStandard, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.SurgeFare != 0 {
		t.Errorf("sub-1.0 surge must not discount, got surge fare %.2f", fare.SurgeFare)
	}
	if fare.TotalFare != 25.00 {
		t.Errorf("expected total 25.00, got %.2f", fare.TotalFare)
	}
}

func TestEstimateFare_ZeroTrip(t *testing.T) {
	t.Parallel()

	fare, err := service.EstimateFare(0, 0, domain.RideTypeStandard, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.TotalFare != 5.00 {
		t.Errorf("zero-length trip should cost the base fare, got %.2f", fare.TotalFare)
	}
}

func TestEstimateFare_NegativeInputs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		distance float64
		duration float64
		surge    float64
	}{
		{"negative distance", -1, 20, 1.0},
		{"negative duration", 10, -5, 1.0},
		{"negative surge", 10, 20, -2.0},
	}

	for _, tc := range cases {
		_, err := service.EstimateFare(tc.distance, tc.duration, domain.RideTypeStandard, tc.surge)
		if !errors.Is(err, service.ErrInvalidFareInput) {
			t.Errorf("%s: expected ErrInvalidFareInput, got %v", tc.name, err)
		}
	}
}

func TestEstimateFare_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := service.EstimateFare(12.34, 56.7, domain.RideTypeXL, 1.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := service.EstimateFare(12.34, 56.7, domain.RideTypeXL, 1.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *again != *first {
			t.Fatalf("estimate is not deterministic: %+v vs %+v", again, first)
		}
	}
}
