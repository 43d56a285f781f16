package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// DriverHandler handles HTTP requests for drivers, vehicles, and documents.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	LicenseNumber string  `json:"license_number"`
	Status        string  `json:"status"`
	Verified      bool    `json:"verified"`
	Rating        float64 `json:"rating"`
	CreatedAt     string  `json:"created_at"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            driver.ID,
		Name:          driver.Name,
		Phone:         driver.Phone,
		LicenseNumber: driver.LicenseNumber,
		Status:        string(driver.Status),
		Verified:      driver.Verified,
		Rating:        driver.Rating,
		CreatedAt:     formatTime(driver.CreatedAt),
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, toDriverResponse(driver))
	}

	respondJSON(c, http.StatusOK, response)
}

// Verify handles POST /v1/drivers/:id/verify
func (h *DriverHandler) Verify(c *gin.Context) {
	driver, err := h.driverService.VerifyDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// SuspendDriverRequest is the HTTP request body for suspending a driver.
type SuspendDriverRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Suspend handles POST /v1/drivers/:id/suspend
func (h *DriverHandler) Suspend(c *gin.Context) {
	var req SuspendDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.SuspendDriver(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// Reactivate handles POST /v1/drivers/:id/reactivate
func (h *DriverHandler) Reactivate(c *gin.Context) {
	driver, err := h.driverService.ReactivateDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// DocumentResponse is the HTTP representation of a driver document.
type DocumentResponse struct {
	ID         string `json:"id"`
	DriverID   string `json:"driver_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	ReviewedAt string `json:"reviewed_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toDocumentResponse(doc *domain.DriverDocument) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		DriverID:   doc.DriverID,
		Kind:       doc.Kind,
		Status:     string(doc.Status),
		ReviewedAt: formatTimePtr(doc.ReviewedAt),
		CreatedAt:  formatTime(doc.CreatedAt),
	}
}

// SubmitDocumentRequest is the HTTP request body for submitting a document.
type SubmitDocumentRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SubmitDocument handles POST /v1/drivers/:id/documents
func (h *DriverHandler) SubmitDocument(c *gin.Context) {
	var req SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	doc, err := h.driverService.SubmitDocument(c.Request.Context(), c.Param("id"), req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDocumentResponse(doc))
}

// GetDocuments handles GET /v1/drivers/:id/documents
func (h *DriverHandler) GetDocuments(c *gin.Context) {
	docs, err := h.driverService.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		response = append(response, toDocumentResponse(doc))
	}

	respondJSON(c, http.StatusOK, response)
}

// ReviewDocumentRequest is the HTTP request body for reviewing a document.
type ReviewDocumentRequest struct {
	Approve bool `json:"approve"`
}

// ReviewDocument handles POST /v1/documents/:id/review
func (h *DriverHandler) ReviewDocument(c *gin.Context) {
	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	doc, err := h.driverService.ReviewDocument(c.Request.Context(), c.Param("id"), req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDocumentResponse(doc))
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID        string `json:"id"`
	DriverID  string `json:"driver_id"`
	Plate     string `json:"plate"`
	Model     string `json:"model"`
	Capacity  int    `json:"capacity"`
	RideClass string `json:"ride_class"`
	CreatedAt string `json:"created_at"`
}

func toVehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        vehicle.ID,
		DriverID:  vehicle.DriverID,
		Plate:     vehicle.Plate,
		Model:     vehicle.Model,
		Capacity:  vehicle.Capacity,
		RideClass: string(vehicle.RideClass),
		CreatedAt: formatTime(vehicle.CreatedAt),
	}
}

// RegisterVehicleRequest is the HTTP request body for registering a vehicle.
type RegisterVehicleRequest struct {
	Plate     string `json:"plate" binding:"required"`
	Model     string `json:"model" binding:"required"`
	Capacity  int    `json:"capacity"`
	RideClass string `json:"ride_class"`
}

// RegisterVehicle handles POST /v1/drivers/:id/vehicles
func (h *DriverHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideClass, err := service.ValidateRideType(req.RideClass)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vehicle, err := h.driverService.RegisterVehicle(c.Request.Context(), service.RegisterVehicleRequest{
		DriverID:  c.Param("id"),
		Plate:     req.Plate,
		Model:     req.Model,
		Capacity:  req.Capacity,
		RideClass: rideClass,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicles handles GET /v1/drivers/:id/vehicles
func (h *DriverHandler) GetVehicles(c *gin.Context) {
	vehicles, err := h.driverService.ListVehicles(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		response = append(response, toVehicleResponse(vehicle))
	}

	respondJSON(c, http.StatusOK, response)
}
