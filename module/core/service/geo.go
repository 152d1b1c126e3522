package service

import (
	"math"

	"github.com/petfence/petfence/module/core/domain"
)

// Mean Earth radius for the spherical approximation.
const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance between two coordinates in
// meters, computed with the haversine formula.
func Distance(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EvaluateMembership classifies a sample against a zone. The boundary is
// inclusive: a sample exactly on the radius is inside. Accuracy is not folded
// in here; samples too inaccurate to trust never reach the evaluator.
func EvaluateMembership(sample domain.LocationSample, zone domain.SafeZone) domain.Membership {
	if Distance(sample.Coordinate, zone.Center) <= zone.RadiusM {
		return domain.MembershipInside
	}
	return domain.MembershipOutside
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
