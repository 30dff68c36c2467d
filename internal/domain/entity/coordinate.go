package entity

import "fmt"

// Coordinate is an immutable WGS84 position. Address is a display label
// derived from the position and is never used for distance math.
type Coordinate struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
	Address   string  `json:"address,omitempty" firestore:"address,omitempty"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Latitude:  lat,
		Longitude: lon,
		Address:   FormatAddress(lat, lon),
	}
}

// FormatAddress is the fallback label used when no reverse geocoder is set.
func FormatAddress(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

func (c Coordinate) String() string {
	if c.Address != "" {
		return c.Address
	}
	return FormatAddress(c.Latitude, c.Longitude)
}
