package domain

import "time"

type Membership string

const (
	MembershipUnknown Membership = "unknown"
	MembershipInside  Membership = "inside"
	MembershipOutside Membership = "outside"
)

// MembershipState is the tracked status of one (pet, zone) pair. Pending
// counts consecutive evaluations that disagree with Status; a transition is
// confirmed only once Pending reaches the debounce threshold.
type MembershipState struct {
	PetID          string     `json:"pet_id"`
	ZoneID         string     `json:"zone_id"`
	Status         Membership `json:"status"`
	LastTransition time.Time  `json:"last_transition"`
	LastEvaluated  time.Time  `json:"last_evaluated"`
	Pending        int        `json:"pending"`
}
