package domain

import "time"

// DriverStatus represents the administrative standing of a driver.
type DriverStatus string

const (
	DriverStatusPendingReview DriverStatus = "pending_review"
	DriverStatusActive        DriverStatus = "active"
	DriverStatusSuspended     DriverStatus = "suspended"
)

// Driver represents a fleet driver record.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	LicenseNumber string
	Status        DriverStatus
	Verified      bool
	Rating        float64
	CreatedAt     time.Time
}
