package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// DriverService handles driver registration, verification, and the
// vehicle/document registry behind the admin dashboard.
type DriverService struct {
	driverRepo  repository.DriverRepository
	vehicleRepo repository.VehicleRepository
	docRepo     repository.DocumentRepository
	sink        ActivitySink
	logger      *zap.Logger
}

// NewDriverService creates a new DriverService. sink may be nil.
func NewDriverService(
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	docRepo repository.DocumentRepository,
	sink ActivitySink,
	logger *zap.Logger,
) *DriverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		docRepo:     docRepo,
		sink:        sink,
		logger:      logger,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Phone         string
	LicenseNumber string
}

// RegisterDriver adds a driver in pending_review state.
func (s *DriverService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Status:        domain.DriverStatusPendingReview,
		CreatedAt:     time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	s.record(ctx, driver.ID, "driver.registered", map[string]any{"name": driver.Name})
	return driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// ListDrivers retrieves all drivers.
func (s *DriverService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// VerifyDriver marks a driver verified and active. Requires at least one
// submitted document and no pending or rejected ones.
func (s *DriverService) VerifyDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDriverNotVerifiable
	}
	for _, doc := range docs {
		if doc.Status != domain.DocumentStatusApproved {
			return nil, ErrDriverNotVerifiable
		}
	}

	driver.Verified = true
	driver.Status = domain.DriverStatusActive
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	s.record(ctx, driver.ID, "driver.verified", map[string]any{"documents": len(docs)})
	return driver, nil
}

// SuspendDriver suspends a driver.
func (s *DriverService) SuspendDriver(ctx context.Context, driverID, reason string) (*domain.Driver, error) {
	return s.setDriverStatus(ctx, driverID, domain.DriverStatusSuspended, "driver.suspended", reason)
}

// ReactivateDriver restores a suspended driver to active.
func (s *DriverService) ReactivateDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.setDriverStatus(ctx, driverID, domain.DriverStatusActive, "driver.reactivated", "")
}

func (s *DriverService) setDriverStatus(ctx context.Context, driverID string, status domain.DriverStatus, event, reason string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	driver.Status = status
	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	payload := map[string]any{"status": string(status)}
	if reason != "" {
		payload["reason"] = reason
	}
	s.record(ctx, driver.ID, event, payload)
	return driver, nil
}

// SubmitDocument records a compliance document for review.
func (s *DriverService) SubmitDocument(ctx context.Context, driverID, kind string) (*domain.DriverDocument, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	// Driver must exist.
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	doc := &domain.DriverDocument{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		Kind:      kind,
		Status:    domain.DocumentStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.record(ctx, driverID, "document.submitted", map[string]any{"kind": kind, "document_id": doc.ID})
	return doc, nil
}

// ReviewDocument approves or rejects a pending document.
func (s *DriverService) ReviewDocument(ctx context.Context, documentID string, approve bool) (*domain.DriverDocument, error) {
	if documentID == "" {
		return nil, ErrInvalidDocumentID
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if approve {
		doc.Status = domain.DocumentStatusApproved
	} else {
		doc.Status = domain.DocumentStatusRejected
	}
	now := time.Now()
	doc.ReviewedAt = &now

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.record(ctx, doc.DriverID, "document.reviewed", map[string]any{
		"document_id": doc.ID,
		"status":      string(doc.Status),
	})
	return doc, nil
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	DriverID  string
	Plate     string
	Model     string
	Capacity  int
	RideClass domain.RideType
}

// RegisterVehicle registers a vehicle to a driver.
func (s *DriverService) RegisterVehicle(ctx context.Context, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return nil, err
	}

	rideClass := req.RideClass
	if rideClass == "" {
		rideClass = domain.RideTypeStandard
	}

	vehicle := &domain.Vehicle{
		ID:        uuid.New().String(),
		DriverID:  req.DriverID,
		Plate:     req.Plate,
		Model:     req.Model,
		Capacity:  req.Capacity,
		RideClass: rideClass,
		CreatedAt: time.Now(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.record(ctx, req.DriverID, "vehicle.registered", map[string]any{"plate": vehicle.Plate})
	return vehicle, nil
}

// ListVehicles retrieves a driver's vehicles.
func (s *DriverService) ListVehicles(ctx context.Context, driverID string) ([]*domain.Vehicle, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.vehicleRepo.GetByDriverID(ctx, driverID)
}

// ListDocuments retrieves a driver's documents.
func (s *DriverService) ListDocuments(ctx context.Context, driverID string) ([]*domain.DriverDocument, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.docRepo.GetByDriverID(ctx, driverID)
}

func (s *DriverService) record(ctx context.Context, subjectID, eventType string, payload map[string]any) {
	if s.sink == nil {
		return
	}
	sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	if err := s.sink.Record(sinkCtx, subjectID, eventType, payload); err != nil {
		s.logger.Warn("activity sink record failed",
			zap.String("subject_id", subjectID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
