package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"fleetops/internal/domain"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
)

// peakHoursTop is how many hour buckets the overview surfaces.
const peakHoursTop = 3

// statsScanLimit bounds the ride scan behind an overview snapshot.
const statsScanLimit = 5000

// Aggregate computes a statistics snapshot over the given rides in a
// single pass. It is pure and order-independent: permuting the input
// yields the same snapshot. Hour-of-day and date buckets are computed in
// now's location, so the caller's clock decides the timezone.
func Aggregate(rides []*domain.Ride, now time.Time) domain.Stats {
	acc := newStatsAccumulator(now)
	for _, ride := range rides {
		acc.add(ride)
	}
	return acc.finalize()
}

// AggregateSharded computes the same snapshot as Aggregate by reducing
// the input in parallel shards and merging the partials. The aggregation
// is a pure reduction, so sharding never changes the result.
func AggregateSharded(rides []*domain.Ride, now time.Time, shards int) domain.Stats {
	if shards <= 1 || len(rides) < shards {
		return Aggregate(rides, now)
	}

	partials := make([]*statsAccumulator, shards)
	chunk := (len(rides) + shards - 1) / shards

	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(rides) {
			hi = len(rides)
		}

		acc := newStatsAccumulator(now)
		partials[i] = acc

		wg.Add(1)
		go func(slice []*domain.Ride) {
			defer wg.Done()
			for _, ride := range slice {
				acc.add(ride)
			}
		}(rides[lo:hi])
	}
	wg.Wait()

	total := partials[0]
	for _, p := range partials[1:] {
		total.merge(p)
	}
	return total.finalize()
}

// statsAccumulator holds the running sums for one pass over a ride set.
type statsAccumulator struct {
	now time.Time
	loc *time.Location

	total     int
	completed int
	cancelled int
	active    int

	earnings    float64
	distanceKm  float64
	durationMin int

	ratingSum   float64
	ratingCount int

	hourCounts [24]int

	today int
	week  int
	month int
}

func newStatsAccumulator(now time.Time) *statsAccumulator {
	return &statsAccumulator{now: now, loc: now.Location()}
}

func (a *statsAccumulator) add(ride *domain.Ride) {
	a.total++

	switch ride.Status {
	case domain.RideStatusCompleted:
		a.completed++
	case domain.RideStatusCancelled:
		a.cancelled++
	default:
		a.active++
	}

	if ride.DriverEarnings != nil {
		a.earnings += *ride.DriverEarnings
	} else if ride.ActualFare != nil {
		a.earnings += *ride.ActualFare * driverEarningsShare
	}

	a.distanceKm += ride.DistanceKm
	if ride.DurationMinutes != nil {
		a.durationMin += *ride.DurationMinutes
	}

	if ride.Rating != nil && *ride.Rating > 0 {
		a.ratingSum += *ride.Rating
		a.ratingCount++
	}

	created := ride.CreatedAt.In(a.loc)
	a.hourCounts[created.Hour()]++

	ny, nm, nd := a.now.Date()
	cy, cm, cd := created.Date()
	if cy == ny && cm == nm && cd == nd {
		a.today++
	}
	if cy == ny && cm == nm {
		a.month++
	}
	nwy, nw := a.now.ISOWeek()
	cwy, cw := created.ISOWeek()
	if cwy == nwy && cw == nw {
		a.week++
	}
}

func (a *statsAccumulator) merge(b *statsAccumulator) {
	a.total += b.total
	a.completed += b.completed
	a.cancelled += b.cancelled
	a.active += b.active
	a.earnings += b.earnings
	a.distanceKm += b.distanceKm
	a.durationMin += b.durationMin
	a.ratingSum += b.ratingSum
	a.ratingCount += b.ratingCount
	for h := range a.hourCounts {
		a.hourCounts[h] += b.hourCounts[h]
	}
	a.today += b.today
	a.week += b.week
	a.month += b.month
}

func (a *statsAccumulator) finalize() domain.Stats {
	stats := domain.Stats{
		TotalRides:           a.total,
		CompletedRides:       a.completed,
		CancelledRides:       a.cancelled,
		ActiveRides:          a.active,
		TotalEarnings:        round2(a.earnings),
		TotalDistanceKm:      round2(a.distanceKm),
		TotalDurationMinutes: a.durationMin,
		RidesToday:           a.today,
		RidesThisWeek:        a.week,
		RidesThisMonth:       a.month,
		PeakHours:            topHours(a.hourCounts, peakHoursTop),
	}

	if a.total > 0 {
		stats.CompletionRate = round2(float64(a.completed) / float64(a.total) * 100)
		stats.CancellationRate = round2(float64(a.cancelled) / float64(a.total) * 100)
	}
	if a.ratingCount > 0 {
		stats.AverageRating = round2(a.ratingSum / float64(a.ratingCount))
	}
	if a.completed > 0 {
		stats.AverageEarningsPerRide = round2(a.earnings / float64(a.completed))
	}

	return stats
}

// topHours returns the n busiest hour buckets, ties broken hour-ascending.
func topHours(counts [24]int, n int) []domain.PeakHour {
	var hours []domain.PeakHour
	for h, c := range counts {
		if c > 0 {
			hours = append(hours, domain.PeakHour{Hour: h, Rides: c})
		}
	}

	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Rides != hours[j].Rides {
			return hours[i].Rides > hours[j].Rides
		}
		return hours[i].Hour < hours[j].Hour
	})

	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

// StatsService serves statistics snapshots over the ride store. The
// system overview is cached briefly in Redis; per-driver stats are
// computed on demand.
type StatsService struct {
	rideRepo repository.RideRepository
	cache    *redis.CacheStore
	logger   *zap.Logger
}

// NewStatsService creates a new StatsService. cache may be nil.
func NewStatsService(rideRepo repository.RideRepository, cache *redis.CacheStore, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{rideRepo: rideRepo, cache: cache, logger: logger}
}

// Overview computes the system-wide snapshot as of now.
func (s *StatsService) Overview(ctx context.Context, now time.Time) (*domain.Stats, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetStatsOverview(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rideRepo.Query(ctx, repository.RideFilter{Limit: statsScanLimit})
	if err != nil {
		return nil, err
	}

	stats := Aggregate(rides, now)

	if s.cache != nil {
		if err := s.cache.SetStatsOverview(ctx, &stats); err != nil {
			s.logger.Warn("stats overview cache write failed", zap.Error(err))
		}
	}

	return &stats, nil
}

// DriverStats computes the snapshot for a single driver's rides.
func (s *StatsService) DriverStats(ctx context.Context, driverID string, now time.Time) (*domain.Stats, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	rides, err := s.rideRepo.Query(ctx, repository.RideFilter{
		DriverID: driverID,
		Limit:    statsScanLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := Aggregate(rides, now)
	return &stats, nil
}
