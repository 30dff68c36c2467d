// Package geo computes great-circle distances and distance rankings
// relative to a reference coordinate.
package geo

import (
	"fmt"
	"math"

	"bloommarket/internal/domain/entity"
	"bloommarket/pkg/errors"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// ValidateCoordinate reports INVALID_COORDINATE for NaN or out-of-range input.
func ValidateCoordinate(c entity.Coordinate) error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return errors.InvalidCoordinate(fmt.Sprintf("latitude %v out of range [-90, 90]", c.Latitude))
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return errors.InvalidCoordinate(fmt.Sprintf("longitude %v out of range [-180, 180]", c.Longitude))
	}
	return nil
}

// Distance returns the Haversine distance between a and b in kilometers.
func Distance(a, b entity.Coordinate) (float64, error) {
	if err := ValidateCoordinate(a); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(b); err != nil {
		return 0, err
	}
	return haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// clamp rounding noise so antipodal points do not produce NaN
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// LatitudeSpan is the number of degrees of latitude covering radiusKm.
func LatitudeSpan(radiusKm float64) float64 {
	return radiusKm / (EarthRadiusKm * math.Pi / 180)
}
