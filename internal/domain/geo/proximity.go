package geo

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"bloommarket/internal/domain/entity"
)

const (
	tolerance   = 1e-9
	minChildren = 4
	maxChildren = 16
	dimensions  = 2
)

// Located is anything carrying its own coordinate.
type Located interface {
	GetLocation() entity.Coordinate
}

// Ranked pairs an item with its distance to the reference used for ranking.
type Ranked[T Located] struct {
	Item       T       `json:"item"`
	DistanceKm float64 `json:"distanceKm"`
}

// Rank orders items by ascending distance from ref. Ties keep input order
// and the input slice is left untouched.
func Rank[T Located](ref entity.Coordinate, items []T) ([]Ranked[T], error) {
	if err := ValidateCoordinate(ref); err != nil {
		return nil, err
	}

	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		d, err := Distance(ref, item.GetLocation())
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, Ranked[T]{Item: item, DistanceKm: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked, nil
}

// Items strips the distances from a ranked slice.
func Items[T Located](ranked []Ranked[T]) []T {
	out := make([]T, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item
	}
	return out
}

type spatialItem struct {
	index int
	rect  rtreego.Rect
}

func (s *spatialItem) Bounds() rtreego.Rect {
	return s.rect
}

// RankWithin ranks only the items within radiusKm of ref. Candidates are
// prefiltered through an R-tree bounding box search and then checked with
// the exact Haversine distance. radiusKm <= 0 disables the filter.
func RankWithin[T Located](ref entity.Coordinate, items []T, radiusKm float64) ([]Ranked[T], error) {
	if radiusKm <= 0 {
		return Rank(ref, items)
	}
	if err := ValidateCoordinate(ref); err != nil {
		return nil, err
	}

	candidates := items
	if bounds, ok := searchBounds(ref, radiusKm); ok && len(items) > 0 {
		tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
		for i, item := range items {
			loc := item.GetLocation()
			if err := ValidateCoordinate(loc); err != nil {
				return nil, err
			}
			p := rtreego.Point{loc.Latitude, loc.Longitude}
			tree.Insert(&spatialItem{index: i, rect: p.ToRect(tolerance)})
		}

		hits := tree.SearchIntersect(bounds)
		indexes := make([]int, 0, len(hits))
		for _, hit := range hits {
			indexes = append(indexes, hit.(*spatialItem).index)
		}
		// tree order is arbitrary; restore input order so ties stay stable
		sort.Ints(indexes)

		candidates = make([]T, 0, len(indexes))
		for _, i := range indexes {
			candidates = append(candidates, items[i])
		}
	}

	ranked, err := Rank(ref, candidates)
	if err != nil {
		return nil, err
	}

	n := sort.Search(len(ranked), func(i int) bool {
		return ranked[i].DistanceKm > radiusKm
	})
	return ranked[:n], nil
}

// searchBounds returns a lat/lon box covering radiusKm around ref. It
// reports false when the box would wrap the antimeridian or a pole, in which
// case callers scan every item instead.
func searchBounds(ref entity.Coordinate, radiusKm float64) (rtreego.Rect, bool) {
	latDeg := (radiusKm / EarthRadiusKm) * (180 / math.Pi)
	cosLat := math.Cos(toRadians(ref.Latitude))
	if cosLat < 1e-6 {
		return rtreego.Rect{}, false
	}
	lonDeg := latDeg / cosLat

	minLat, maxLat := ref.Latitude-latDeg, ref.Latitude+latDeg
	minLon, maxLon := ref.Longitude-lonDeg, ref.Longitude+lonDeg
	if minLat < -90 || maxLat > 90 || minLon < -180 || maxLon > 180 {
		return rtreego.Rect{}, false
	}

	rect, err := rtreego.NewRectFromPoints(rtreego.Point{minLat, minLon}, rtreego.Point{maxLat, maxLon})
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// Partition splits items into those with rankable coordinates and the rest.
func Partition[T Located](items []T) (valid, invalid []T) {
	valid = make([]T, 0, len(items))
	for _, item := range items {
		if ValidateCoordinate(item.GetLocation()) != nil {
			invalid = append(invalid, item)
			continue
		}
		valid = append(valid, item)
	}
	return valid, invalid
}
