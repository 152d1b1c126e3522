package domain

import "time"

type TransitionKind string

const (
	TransitionEntered TransitionKind = "entered"
	TransitionExited  TransitionKind = "exited"
)

// TransitionEvent is a confirmed membership change for a (pet, zone) pair.
// The tracker emits each event exactly once.
type TransitionEvent struct {
	PetID      string         `json:"pet_id"`
	ZoneID     string         `json:"zone_id"`
	Kind       TransitionKind `json:"kind"`
	Sample     LocationSample `json:"sample"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type AlertSeverity string

const (
	SeverityHigh AlertSeverity = "high"
	SeverityLow  AlertSeverity = "low"
)

// Alert is the dispatcher's output to the notification transport.
type Alert struct {
	PetID     string         `json:"pet_id"`
	ZoneID    string         `json:"zone_id"`
	Event     TransitionKind `json:"event"`
	Severity  AlertSeverity  `json:"severity"`
	Message   string         `json:"message"`
	Location  Coordinate     `json:"location"`
	Timestamp int64          `json:"timestamp"`
}
