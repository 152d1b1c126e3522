package domain

import "time"

// LocationSample is a single location fix for a pet. Samples are immutable;
// a newer sample supersedes an older one, it is never merged into it.
type LocationSample struct {
	PetID      string     `json:"pet_id"`
	Coordinate Coordinate `json:"coordinate"`
	AccuracyM  float64    `json:"accuracy_m"`
	CapturedAt time.Time  `json:"captured_at"`
	Simulated  bool       `json:"simulated"`
}

type HistoryQuery struct {
	PetID string
	Start time.Time
	End   time.Time
}
