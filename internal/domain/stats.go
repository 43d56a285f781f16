package domain

// PeakHour is an hour-of-day bucket (0-23) with its ride count.
type PeakHour struct {
	Hour  int
	Rides int
}

// Stats is an ephemeral aggregate computed from a set of ride records.
// It is never persisted; a snapshot has no identity beyond the call that
// produced it.
type Stats struct {
	TotalRides     int
	CompletedRides int
	CancelledRides int
	ActiveRides    int // in_progress or earlier

	CompletionRate   float64 // percent, 2dp
	CancellationRate float64 // percent, 2dp

	TotalEarnings        float64
	TotalDistanceKm      float64
	TotalDurationMinutes int

	AverageRating          float64
	AverageEarningsPerRide float64

	PeakHours []PeakHour // top 3 by ride count, ties hour-ascending

	RidesToday     int
	RidesThisWeek  int
	RidesThisMonth int
}
