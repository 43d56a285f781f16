package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
	"fleetops/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService       *service.RideService
	lifecycleService  *service.LifecycleService
	completionService *service.CompletionService
	activityService   *service.ActivityService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	rideService *service.RideService,
	lifecycleService *service.LifecycleService,
	completionService *service.CompletionService,
	activityService *service.ActivityService,
) *RideHandler {
	return &RideHandler{
		rideService:       rideService,
		lifecycleService:  lifecycleService,
		completionService: completionService,
		activityService:   activityService,
	}
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string   `json:"id"`
	DriverID        string   `json:"driver_id,omitempty"`
	PassengerName   string   `json:"passenger_name"`
	PickupAddress   string   `json:"pickup_address"`
	DropoffAddress  string   `json:"dropoff_address"`
	PickupLat       *float64 `json:"pickup_lat,omitempty"`
	PickupLng       *float64 `json:"pickup_lng,omitempty"`
	DropoffLat      *float64 `json:"dropoff_lat,omitempty"`
	DropoffLng      *float64 `json:"dropoff_lng,omitempty"`
	RideType        string   `json:"ride_type"`
	EstimatedFare   float64  `json:"estimated_fare"`
	ActualFare      *float64 `json:"actual_fare,omitempty"`
	DriverEarnings  *float64 `json:"driver_earnings,omitempty"`
	Commission      *float64 `json:"commission,omitempty"`
	DistanceKm      float64  `json:"distance_km"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Status          string   `json:"status"`
	StatusUpdatedAt string   `json:"status_updated_at"`
	Rating          *float64 `json:"rating,omitempty"`
	CancelReason    string   `json:"cancel_reason,omitempty"`
	CancelledBy     string   `json:"cancelled_by,omitempty"`
	RequestedAt     string   `json:"requested_at,omitempty"`
	AcceptedAt      string   `json:"accepted_at,omitempty"`
	DriverArrivedAt string   `json:"driver_arrived_at,omitempty"`
	StartedAt       string   `json:"started_at,omitempty"`
	CompletedAt     string   `json:"completed_at,omitempty"`
	CancelledAt     string   `json:"cancelled_at,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:              ride.ID,
		DriverID:        ride.DriverID,
		PassengerName:   ride.PassengerName,
		PickupAddress:   ride.PickupAddress,
		DropoffAddress:  ride.DropoffAddress,
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		DropoffLat:      ride.DropoffLat,
		DropoffLng:      ride.DropoffLng,
		RideType:        string(ride.RideType),
		EstimatedFare:   ride.EstimatedFare,
		ActualFare:      ride.ActualFare,
		DriverEarnings:  ride.DriverEarnings,
		Commission:      ride.Commission,
		DistanceKm:      ride.DistanceKm,
		DurationMinutes: ride.DurationMinutes,
		Status:          string(ride.Status),
		StatusUpdatedAt: formatTime(ride.StatusUpdatedAt),
		Rating:          ride.Rating,
		CancelReason:    ride.CancelReason,
		CancelledBy:     ride.CancelledBy,
		RequestedAt:     formatTimePtr(ride.RequestedAt),
		AcceptedAt:      formatTimePtr(ride.AcceptedAt),
		DriverArrivedAt: formatTimePtr(ride.DriverArrivedAt),
		StartedAt:       formatTimePtr(ride.StartedAt),
		CompletedAt:     formatTimePtr(ride.CompletedAt),
		CancelledAt:     formatTimePtr(ride.CancelledAt),
		CreatedAt:       formatTime(ride.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// CreateRideRequest is the HTTP request body for recording a ride.
type CreateRideRequest struct {
	DriverID        string   `json:"driver_id"`
	PassengerName   string   `json:"passenger_name" binding:"required"`
	PickupAddress   string   `json:"pickup_address" binding:"required"`
	DropoffAddress  string   `json:"dropoff_address" binding:"required"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DropoffLat      *float64 `json:"dropoff_lat"`
	DropoffLng      *float64 `json:"dropoff_lng"`
	RideType        string   `json:"ride_type"`
	DistanceKm      float64  `json:"distance_km"`
	DurationMinutes float64  `json:"duration_minutes"`
	SurgeMultiplier float64  `json:"surge_multiplier"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideType, err := service.ValidateRideType(req.RideType)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		DriverID:        req.DriverID,
		PassengerName:   req.PassengerName,
		PickupAddress:   req.PickupAddress,
		DropoffAddress:  req.DropoffAddress,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		RideType:        rideType,
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		SurgeMultiplier: req.SurgeMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	filter := repository.RideFilter{
		Status:   domain.RideStatus(c.Query("status")),
		DriverID: c.Query("driver_id"),
		Search:   c.Query("search"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from timestamp"})
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to timestamp"})
			return
		}
		filter.To = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = n
	}

	rides, err := h.rideService.ListRides(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, toRideResponse(ride))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateStatusRequest is the HTTP request body for a status transition.
type UpdateStatusRequest struct {
	Status          string   `json:"status" binding:"required"`
	DriverID        *string  `json:"driver_id"`
	CancelReason    *string  `json:"cancel_reason"`
	CancelledBy     *string  `json:"cancelled_by"`
	Rating          *float64 `json:"rating"`
	DurationMinutes *int     `json:"duration_minutes"`
}

// UpdateStatus handles POST /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	target, err := service.ValidateRideStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ride, err := h.lifecycleService.Transition(c.Request.Context(), c.Param("id"), target, service.RidePatch{
		DriverID:        req.DriverID,
		CancelReason:    req.CancelReason,
		CancelledBy:     req.CancelledBy,
		Rating:          req.Rating,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// UpdateRideRequest is the HTTP request body for a general ride patch.
type UpdateRideRequest struct {
	Status          *string  `json:"status"`
	DriverID        *string  `json:"driver_id"`
	PassengerName   *string  `json:"passenger_name"`
	Rating          *float64 `json:"rating"`
	DurationMinutes *int     `json:"duration_minutes"`
	CancelReason    *string  `json:"cancel_reason"`
}

// Update handles PATCH /v1/rides/:id
func (h *RideHandler) Update(c *gin.Context) {
	var req UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	patch := service.RidePatch{
		DriverID:        req.DriverID,
		PassengerName:   req.PassengerName,
		Rating:          req.Rating,
		DurationMinutes: req.DurationMinutes,
		CancelReason:    req.CancelReason,
	}
	if req.Status != nil {
		status, err := service.ValidateRideStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		patch.Status = &status
	}

	ride, err := h.lifecycleService.UpdateRide(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CompleteRideRequest is the HTTP request body for completing a ride.
type CompleteRideRequest struct {
	ActualFare      *float64 `json:"actual_fare"`
	DriverEarnings  *float64 `json:"driver_earnings"`
	Commission      *float64 `json:"commission"`
	DurationMinutes *int     `json:"duration_minutes"`
	Rating          *float64 `json:"rating"`
}

// Complete handles POST /v1/rides/:id/complete
func (h *RideHandler) Complete(c *gin.Context) {
	var req CompleteRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.completionService.Complete(c.Request.Context(), c.Param("id"), service.CompleteOverrides{
		ActualFare:      req.ActualFare,
		DriverEarnings:  req.DriverEarnings,
		Commission:      req.Commission,
		DurationMinutes: req.DurationMinutes,
		Rating:          req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by"`
}

// Cancel handles POST /v1/rides/:id/cancel
func (h *RideHandler) Cancel(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.completionService.Cancel(c.Request.Context(), c.Param("id"), req.Reason, req.CancelledBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ActivityEntry is one audit-trail row in HTTP form.
type ActivityEntry struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
	CreatedAt string `json:"created_at"`
}

// GetActivity handles GET /v1/rides/:id/activity
func (h *RideHandler) GetActivity(c *gin.Context) {
	entries, err := h.activityService.Trail(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		response = append(response, ActivityEntry{
			ID:        e.ID,
			EventType: e.EventType,
			Payload:   rawPayload(e.Payload),
			CreatedAt: formatTime(e.CreatedAt),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// EstimateFareRequest is the HTTP request body for a fare estimate.
type EstimateFareRequest struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	RideType        string  `json:"ride_type"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
}

// EstimateFare handles POST /v1/fares/estimate
func (h *RideHandler) EstimateFare(c *gin.Context) {
	var req EstimateFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	surge := req.SurgeMultiplier
	if surge == 0 {
		surge = 1.0
	}

	breakdown, err := service.EstimateFare(req.DistanceKm, req.DurationMinutes, domain.RideType(req.RideType), surge)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, breakdown)
}
