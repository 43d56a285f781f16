package domain

import "time"

// Activity is an audit-trail entry recorded for lifecycle events and
// administrative mutations. Payload holds event-specific JSON.
type Activity struct {
	ID        string
	SubjectID string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}
