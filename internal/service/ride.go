package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetops/internal/domain"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
)

// RideService handles ride intake and read paths. Status mutations live
// in LifecycleService and CompletionService.
type RideService struct {
	rideRepo repository.RideRepository
	cache    *redis.CacheStore
	logger   *zap.Logger
}

// NewRideService creates a new RideService. cache may be nil.
func NewRideService(rideRepo repository.RideRepository, cache *redis.CacheStore, logger *zap.Logger) *RideService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RideService{rideRepo: rideRepo, cache: cache, logger: logger}
}

// CreateRideRequest contains the parameters for recording a new ride.
type CreateRideRequest struct {
	DriverID        string
	PassengerName   string
	PickupAddress   string
	DropoffAddress  string
	PickupLat       *float64
	PickupLng       *float64
	DropoffLat      *float64
	DropoffLng      *float64
	RideType        domain.RideType
	DistanceKm      float64
	DurationMinutes float64 // estimated, for fare purposes
	SurgeMultiplier float64
}

// CreateRide records a new ride in pending state with an estimated fare.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	rideType := req.RideType
	if rideType == "" {
		rideType = domain.RideTypeStandard
	}

	surge := req.SurgeMultiplier
	if surge < 1 {
		surge = 1.0
	}

	breakdown, err := EstimateFare(req.DistanceKm, req.DurationMinutes, rideType, surge)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ride := &domain.Ride{
		ID:              uuid.New().String(),
		DriverID:        req.DriverID,
		PassengerName:   req.PassengerName,
		PickupAddress:   req.PickupAddress,
		DropoffAddress:  req.DropoffAddress,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropoffLat:      req.DropoffLat,
		DropoffLng:      req.DropoffLng,
		RideType:        rideType,
		EstimatedFare:   breakdown.TotalFare,
		DistanceKm:      req.DistanceKm,
		Status:          domain.RideStatusPending,
		StatusUpdatedAt: now,
		CreatedAt:       now,
		Version:         1,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// GetRide retrieves a ride, reading through the cache when present.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetRide(ctx, rideID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRide(ctx, ride); err != nil {
			s.logger.Warn("ride cache write failed", zap.String("ride_id", rideID), zap.Error(err))
		}
	}

	return ride, nil
}

// ListRides retrieves rides matching the filter.
func (s *RideService) ListRides(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	if filter.Status != "" {
		if _, err := ValidateRideStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	return s.rideRepo.Query(ctx, filter)
}

// ValidateRideType validates a ride type string. Empty defaults to standard.
func ValidateRideType(rideType string) (domain.RideType, error) {
	switch domain.RideType(rideType) {
	case domain.RideTypeStandard, domain.RideTypePremium, domain.RideTypeXL,
		domain.RideTypeShared, domain.RideTypeDelivery:
		return domain.RideType(rideType), nil
	case "":
		return domain.RideTypeStandard, nil
	default:
		return "", ErrInvalidRideType
	}
}
