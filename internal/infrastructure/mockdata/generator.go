// Package mockdata generates a believable neighbourhood of listings and
// communities around a coordinate, for offline use and demos.
package mockdata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	"bloommarket/internal/session"
)

const (
	PlantCount     = 10
	CommunityCount = 5
	// SpreadKm is the side of the square the generated items are scattered in.
	SpreadKm = 5.0

	kmPerDegree  = 111.0
	defaultImage = "https://images.unsplash.com/photo-1585090190508-ea73efcdcb69"
)

// Generator is an in-process session.DataService. Submitted records are
// echoed back and orders are kept in memory.
type Generator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	orders []*entity.Order
}

var _ session.DataService = (*Generator)(nil)

// NewGenerator seeds the generator. The same seed yields the same data for
// the same reference coordinate.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) FetchListings(ctx context.Context, ref entity.Coordinate) ([]*entity.Plant, error) {
	if err := geo.ValidateCoordinate(ref); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	plants := make([]*entity.Plant, 0, PlantCount)
	for i := 0; i < PlantCount; i++ {
		loc := g.nearby(ref)
		d, _ := geo.Distance(ref, loc)

		plants = append(plants, &entity.Plant{
			ID:               fmt.Sprintf("plant_%d", i),
			UserID:           fmt.Sprintf("user_%d", i),
			SellerName:       fmt.Sprintf("Seller %d", i),
			SellerPhotoURL:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", i),
			Title:            fmt.Sprintf("Plant %d", i),
			Description:      fmt.Sprintf("Beautiful plant within %.1fkm of your location", d),
			Price:            float64(g.rnd.Intn(1000) + 100),
			Currency:         "₹",
			Image:            defaultImage,
			GrowthConditions: "Moderate sunlight, regular watering",
			PaymentMethods:   []entity.PaymentMethod{entity.PaymentCOD, entity.PaymentPickup},
			Location:         loc,
			CreatedAt:        now,
		})
	}
	return plants, nil
}

func (g *Generator) FetchCommunities(ctx context.Context, ref entity.Coordinate) ([]*entity.Community, error) {
	if err := geo.ValidateCoordinate(ref); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	communities := make([]*entity.Community, 0, CommunityCount)
	for i := 0; i < CommunityCount; i++ {
		loc := g.nearby(ref)
		d, _ := geo.Distance(ref, loc)

		kind := entity.CommunityPermanent
		if i%2 == 1 {
			kind = entity.CommunityTemporary
		}

		creator := fmt.Sprintf("user_%d", i)
		communities = append(communities, &entity.Community{
			ID:        fmt.Sprintf("comm_%d", i),
			CreatorID: creator,
			Name:      fmt.Sprintf("Local Plant Community %d", i),
			Type:      kind,
			Purpose:   fmt.Sprintf("Supporting local plant enthusiasts within %.1fkm", d),
			Bio:       "A community for plant lovers in your area. Share tips, trade plants, and meet fellow enthusiasts!",
			Members:   []string{creator},
			Location:  loc,
			CreatedAt: now,
		})
	}
	return communities, nil
}

func (g *Generator) FetchOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := []*entity.Order{}
	for _, o := range g.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (g *Generator) SubmitListing(ctx context.Context, plant *entity.Plant) (*entity.Plant, error) {
	return plant, nil
}

func (g *Generator) SubmitCommunity(ctx context.Context, community *entity.Community) (*entity.Community, error) {
	return community, nil
}

func (g *Generator) SubmitCommunityAction(ctx context.Context, communityID string, action session.CommunityAction) (*entity.Community, error) {
	return nil, nil
}

func (g *Generator) SubmitOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders = append([]*entity.Order{order}, g.orders...)
	return order, nil
}

// nearby picks a point in a SpreadKm square centred on ref. Must be called
// with mu held.
func (g *Generator) nearby(ref entity.Coordinate) entity.Coordinate {
	lat := ref.Latitude + (g.rnd.Float64()-0.5)*(SpreadKm/kmPerDegree)

	cosLat := math.Cos(ref.Latitude * math.Pi / 180)
	lon := ref.Longitude
	if cosLat > 1e-6 {
		lon += (g.rnd.Float64() - 0.5) * (SpreadKm / (kmPerDegree * cosLat))
	}

	lat = math.Max(-90, math.Min(90, lat))
	lon = math.Max(-180, math.Min(180, lon))

	return entity.Coordinate{
		Latitude:  lat,
		Longitude: lon,
		Address:   fmt.Sprintf("%.2f, %.2f", lat, lon),
	}
}
