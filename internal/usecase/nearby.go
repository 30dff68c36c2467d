package usecase

import (
	"math"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/logger"
)

const DefaultNearbyRadiusKm = 25.0

// latitudeBand covers every point within radiusKm of ref. Longitude is not
// narrowed here.
func latitudeBand(ref entity.Coordinate, radiusKm float64) *repository.LatitudeBand {
	span := geo.LatitudeSpan(radiusKm)
	return &repository.LatitudeBand{
		Min: math.Max(-90, ref.Latitude-span),
		Max: math.Min(90, ref.Latitude+span),
	}
}

func nearest[T geo.Located](ref entity.Coordinate, items []T, radiusKm float64, kind string) ([]T, error) {
	valid, invalid := geo.Partition(items)
	if len(invalid) > 0 {
		logger.Warn("Skipped %d %s with invalid coordinates", len(invalid), kind)
	}

	ranked, err := geo.RankWithin(ref, valid, radiusKm)
	if err != nil {
		return nil, err
	}
	return geo.Items(ranked), nil
}
