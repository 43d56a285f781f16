package domain

import "time"

// Vehicle represents a vehicle registered to a driver.
type Vehicle struct {
	ID        string
	DriverID  string
	Plate     string
	Model     string
	Capacity  int
	RideClass RideType
	CreatedAt time.Time
}
