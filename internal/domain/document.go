package domain

import "time"

// DocumentStatus represents the review state of a driver document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// DriverDocument represents a compliance document submitted by a driver
// (license scan, insurance certificate, vehicle registration).
type DriverDocument struct {
	ID         string
	DriverID   string
	Kind       string
	Status     DocumentStatus
	ReviewedAt *time.Time
	CreatedAt  time.Time
}
