package domain

// SafeZone is an owner-defined circular region a pet is expected to stay in.
type SafeZone struct {
	ID      string     `json:"zone_id"`
	PetID   string     `json:"pet_id"`
	Center  Coordinate `json:"center"`
	RadiusM float64    `json:"radius_m"`
	Active  bool       `json:"active"`
}

func (z *SafeZone) Validate() error {
	if z.ID == "" || z.PetID == "" {
		return ErrInvalidZone
	}
	if z.RadiusM <= 0 {
		return ErrInvalidZone
	}
	return z.Center.Validate()
}
