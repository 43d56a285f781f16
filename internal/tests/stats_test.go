package tests

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// ──────────────────────────────────────────────
// STATISTICS AGGREGATION
// ──────────────────────────────────────────────

func completedRide(id string, createdAt time.Time, earnings, rating float64) *domain.Ride {
	r := &domain.Ride{
		ID:        id,
		Status:    domain.RideStatusCompleted,
		CreatedAt: createdAt,
	}
	if earnings > 0 {
		r.DriverEarnings = &earnings
	}
	if rating > 0 {
		r.Rating = &rating
	}
	return r
}

func TestAggregate_EmptyInput(t *testing.T) {
	t.Parallel()

	stats := service.Aggregate(nil, time.Now())

	if stats.TotalRides != 0 || stats.CompletedRides != 0 || stats.CancelledRides != 0 {
		t.Error("expected zero counts")
	}
	if stats.CompletionRate != 0 || stats.CancellationRate != 0 {
		t.Error("rates over an empty set must be zero, not NaN")
	}
	if stats.AverageRating != 0 || stats.AverageEarningsPerRide != 0 {
		t.Error("averages over an empty set must be zero")
	}
	if len(stats.PeakHours) != 0 {
		t.Error("expected no peak hours")
	}
}

func TestAggregate_RatesAndAverageRating(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	rides := []*domain.Ride{
		completedRide("r1", now.Add(-2*time.Hour), 40, 4),
		completedRide("r2", now.Add(-3*time.Hour), 20, 5),
		{ID: "r3", Status: domain.RideStatusCancelled, CreatedAt: now.Add(-4 * time.Hour)},
	}

	stats := service.Aggregate(rides, now)

	if stats.TotalRides != 3 || stats.CompletedRides != 2 || stats.CancelledRides != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.CompletionRate != 66.67 {
		t.Errorf("expected completion rate 66.67, got %.2f", stats.CompletionRate)
	}
	if stats.CancellationRate != 33.33 {
		t.Errorf("expected cancellation rate 33.33, got %.2f", stats.CancellationRate)
	}
	if stats.AverageRating != 4.5 {
		t.Errorf("expected average rating 4.5, got %.2f", stats.AverageRating)
	}
	if stats.TotalEarnings != 60.00 {
		t.Errorf("expected total earnings 60.00, got %.2f", stats.TotalEarnings)
	}
	if stats.AverageEarningsPerRide != 30.00 {
		t.Errorf("expected average earnings 30.00, got %.2f", stats.AverageEarningsPerRide)
	}
}

func TestAggregate_ActiveRides(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rides := []*domain.Ride{
		{ID: "r1", Status: domain.RideStatusPending, CreatedAt: now},
		{ID: "r2", Status: domain.RideStatusAccepted, CreatedAt: now},
		{ID: "r3", Status: domain.RideStatusInProgress, CreatedAt: now},
		{ID: "r4", Status: domain.RideStatusCompleted, CreatedAt: now},
	}

	stats := service.Aggregate(rides, now)
	if stats.ActiveRides != 3 {
		t.Errorf("expected 3 active rides, got %d", stats.ActiveRides)
	}
}

func TestAggregate_EarningsFallBackToFareShare(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fare := 50.00
	rides := []*domain.Ride{
		{ID: "r1", Status: domain.RideStatusCompleted, CreatedAt: now, ActualFare: &fare},
	}

	// No recorded earnings: count the driver share of the fare instead.
	stats := service.Aggregate(rides, now)
	if stats.TotalEarnings != 40.00 {
		t.Errorf("expected fallback earnings 40.00, got %.2f", stats.TotalEarnings)
	}
}

func TestAggregate_ZeroRatingIsUnrated(t *testing.T) {
	t.Parallel()

	now := time.Now()
	zero := 0.0
	five := 5.0
	rides := []*domain.Ride{
		{ID: "r1", Status: domain.RideStatusCompleted, CreatedAt: now, Rating: &zero},
		{ID: "r2", Status: domain.RideStatusCompleted, CreatedAt: now, Rating: &five},
	}

	stats := service.Aggregate(rides, now)
	if stats.AverageRating != 5.0 {
		t.Errorf("zero ratings must not drag the average, got %.2f", stats.AverageRating)
	}
}

func TestAggregate_PeakHoursTopThreeTiesHourAscending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 18, 23, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)

	var rides []*domain.Ride
	addAt := func(hour, n int) {
		for i := 0; i < n; i++ {
			rides = append(rides, &domain.Ride{
				Status:    domain.RideStatusCompleted,
				CreatedAt: day.Add(time.Duration(hour) * time.Hour),
			})
		}
	}
	addAt(8, 3)
	addAt(17, 3)
	addAt(12, 2)
	addAt(22, 2)
	addAt(3, 1)

	stats := service.Aggregate(rides, now)

	want := []domain.PeakHour{
		{Hour: 8, Rides: 3},
		{Hour: 17, Rides: 3},
		{Hour: 12, Rides: 2},
	}
	if !reflect.DeepEqual(stats.PeakHours, want) {
		t.Errorf("expected peak hours %+v, got %+v", want, stats.PeakHours)
	}
}

func TestAggregate_DateBuckets(t *testing.T) {
	t.Parallel()

	// Wednesday noon.
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	rides := []*domain.Ride{
		{ID: "today", Status: domain.RideStatusCompleted, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "monday", Status: domain.RideStatusCompleted, CreatedAt: time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)},
		{ID: "last-week", Status: domain.RideStatusCompleted, CreatedAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		{ID: "last-month", Status: domain.RideStatusCompleted, CreatedAt: time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)},
	}

	stats := service.Aggregate(rides, now)

	if stats.RidesToday != 1 {
		t.Errorf("expected 1 ride today, got %d", stats.RidesToday)
	}
	if stats.RidesThisWeek != 2 {
		t.Errorf("expected 2 rides this week, got %d", stats.RidesThisWeek)
	}
	if stats.RidesThisMonth != 3 {
		t.Errorf("expected 3 rides this month, got %d", stats.RidesThisMonth)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	rides := seedRides(now, 200)

	base := service.Aggregate(rides, now)

	shuffled := make([]*domain.Ride, len(rides))
	copy(shuffled, rides)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	if got := service.Aggregate(shuffled, now); !reflect.DeepEqual(got, base) {
		t.Errorf("aggregation depends on input order:\n%+v\nvs\n%+v", got, base)
	}
}

func TestAggregateSharded_MatchesSinglePass(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	rides := seedRides(now, 500)

	base := service.Aggregate(rides, now)

	for _, shards := range []int{1, 2, 4, 8, 600} {
		if got := service.AggregateSharded(rides, now, shards); !reflect.DeepEqual(got, base) {
			t.Errorf("shards=%d: sharded result diverges:\n%+v\nvs\n%+v", shards, got, base)
		}
	}
}

// seedRides builds a deterministic mixed ride set.
func seedRides(now time.Time, n int) []*domain.Ride {
	rng := rand.New(rand.NewSource(7))
	statuses := []domain.RideStatus{
		domain.RideStatusCompleted,
		domain.RideStatusCompleted,
		domain.RideStatusCancelled,
		domain.RideStatusInProgress,
	}

	rides := make([]*domain.Ride, 0, n)
	for i := 0; i < n; i++ {
		r := &domain.Ride{
			Status:     statuses[rng.Intn(len(statuses))],
			CreatedAt:  now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
			DistanceKm: float64(rng.Intn(300)) / 10,
		}
		if r.Status == domain.RideStatusCompleted {
			earnings := float64(rng.Intn(5000)) / 100
			r.DriverEarnings = &earnings
			if rng.Intn(2) == 0 {
				rating := float64(rng.Intn(5) + 1)
				r.Rating = &rating
			}
			minutes := rng.Intn(90)
			r.DurationMinutes = &minutes
		}
		rides = append(rides, r)
	}
	return rides
}

// ──────────────────────────────────────────────
// STATS SERVICE
// ──────────────────────────────────────────────

func TestStatsService_Overview(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	now := time.Now()
	rideRepo.AddRide(completedRide("r1", now.Add(-time.Hour), 40, 4))
	rideRepo.AddRide(completedRide("r2", now.Add(-2*time.Hour), 20, 5))

	svc := service.NewStatsService(rideRepo, nil, nil)
	stats, err := svc.Overview(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalRides != 2 || stats.CompletedRides != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TotalEarnings != 60.00 {
		t.Errorf("expected earnings 60.00, got %.2f", stats.TotalEarnings)
	}
}

func TestStatsService_DriverStatsFiltersByDriver(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	now := time.Now()
	mine := completedRide("r1", now.Add(-time.Hour), 40, 4)
	mine.DriverID = "driver-1"
	other := completedRide("r2", now.Add(-time.Hour), 99, 5)
	other.DriverID = "driver-2"
	rideRepo.AddRide(mine)
	rideRepo.AddRide(other)

	svc := service.NewStatsService(rideRepo, nil, nil)
	stats, err := svc.DriverStats(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalRides != 1 {
		t.Errorf("expected 1 ride for driver-1, got %d", stats.TotalRides)
	}
	if stats.TotalEarnings != 40.00 {
		t.Errorf("expected earnings 40.00, got %.2f", stats.TotalEarnings)
	}
}
