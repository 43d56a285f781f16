package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// StatsHandler handles HTTP requests for statistics snapshots.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// PeakHourResponse is one hour bucket in HTTP form.
type PeakHourResponse struct {
	Hour  int `json:"hour"`
	Rides int `json:"rides"`
}

// StatsResponse is the HTTP representation of a statistics snapshot.
type StatsResponse struct {
	TotalRides             int                `json:"total_rides"`
	CompletedRides         int                `json:"completed_rides"`
	CancelledRides         int                `json:"cancelled_rides"`
	ActiveRides            int                `json:"active_rides"`
	CompletionRate         float64            `json:"completion_rate"`
	CancellationRate       float64            `json:"cancellation_rate"`
	TotalEarnings          float64            `json:"total_earnings"`
	TotalDistanceKm        float64            `json:"total_distance_km"`
	TotalDurationMinutes   int                `json:"total_duration_minutes"`
	AverageRating          float64            `json:"average_rating"`
	AverageEarningsPerRide float64            `json:"average_earnings_per_ride"`
	PeakHours              []PeakHourResponse `json:"peak_hours"`
	RidesToday             int                `json:"rides_today"`
	RidesThisWeek          int                `json:"rides_this_week"`
	RidesThisMonth         int                `json:"rides_this_month"`
	GeneratedAt            string             `json:"generated_at"`
}

func toStatsResponse(stats *domain.Stats, now time.Time) StatsResponse {
	peaks := make([]PeakHourResponse, 0, len(stats.PeakHours))
	for _, p := range stats.PeakHours {
		peaks = append(peaks, PeakHourResponse{Hour: p.Hour, Rides: p.Rides})
	}

	return StatsResponse{
		TotalRides:             stats.TotalRides,
		CompletedRides:         stats.CompletedRides,
		CancelledRides:         stats.CancelledRides,
		ActiveRides:            stats.ActiveRides,
		CompletionRate:         stats.CompletionRate,
		CancellationRate:       stats.CancellationRate,
		TotalEarnings:          stats.TotalEarnings,
		TotalDistanceKm:        stats.TotalDistanceKm,
		TotalDurationMinutes:   stats.TotalDurationMinutes,
		AverageRating:          stats.AverageRating,
		AverageEarningsPerRide: stats.AverageEarningsPerRide,
		PeakHours:              peaks,
		RidesToday:             stats.RidesToday,
		RidesThisWeek:          stats.RidesThisWeek,
		RidesThisMonth:         stats.RidesThisMonth,
		GeneratedAt:            now.Format(time.RFC3339),
	}
}

// Overview handles GET /v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	now := time.Now()

	stats, err := h.statsService.Overview(c.Request.Context(), now)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toStatsResponse(stats, now))
}

// DriverStats handles GET /v1/drivers/:id/stats
func (h *StatsHandler) DriverStats(c *gin.Context) {
	now := time.Now()

	stats, err := h.statsService.DriverStats(c.Request.Context(), c.Param("id"), now)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toStatsResponse(stats, now))
}
