package session

import (
	"context"
	"errors"
	"sync"

	"bloommarket/internal/domain/entity"
)

var (
	sanFrancisco = entity.NewCoordinate(37.7749, -122.4194)
	oakland      = entity.NewCoordinate(37.8044, -122.2712)
	berkeley     = entity.NewCoordinate(37.8716, -122.2727)
	sanJose      = entity.NewCoordinate(37.3382, -121.8863)
)

var errUnavailable = errors.New("service unavailable")

// fakeData serves fixed collections. Fetches for a latitude listed in gates
// block until that gate is closed; started receives the latitude of every
// fetch that begins.
type fakeData struct {
	mu sync.Mutex

	plants      []*entity.Plant
	byLatitude  map[float64][]*entity.Plant
	communities []*entity.Community
	orders      []*entity.Order

	fetchErr  error
	submitErr error

	gates   map[float64]chan struct{}
	started chan float64

	listingFetches int
	actions        []CommunityAction
	submitted      []string
}

func newFakeData() *fakeData {
	return &fakeData{
		plants: []*entity.Plant{
			{ID: "berkeley", UserID: "seller", Title: "Berkeley Fern", Location: berkeley,
				PaymentMethods: []entity.PaymentMethod{entity.PaymentCOD, entity.PaymentPickup}},
			{ID: "sanjose", UserID: "seller", Title: "San Jose Cactus", Description: "spiky", Location: sanJose,
				PaymentMethods: []entity.PaymentMethod{entity.PaymentPickup}},
			{ID: "oakland", UserID: "alice", Title: "Oakland Monstera", Location: oakland,
				PaymentMethods: []entity.PaymentMethod{entity.PaymentCOD}},
		},
		communities: []*entity.Community{
			{ID: "gardeners", Name: "Gardeners", Members: []string{"bob"}, Location: berkeley},
			{ID: "succulents", Name: "Succulents", Members: []string{"alice"}, Location: oakland},
		},
		gates: map[float64]chan struct{}{},
	}
}

func (f *fakeData) FetchListings(ctx context.Context, ref entity.Coordinate) ([]*entity.Plant, error) {
	f.mu.Lock()
	f.listingFetches++
	gate := f.gates[ref.Latitude]
	started := f.started
	err := f.fetchErr
	plants := f.plants
	if p, ok := f.byLatitude[ref.Latitude]; ok {
		plants = p
	}
	f.mu.Unlock()

	if started != nil {
		started <- ref.Latitude
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return plants, nil
}

func (f *fakeData) FetchCommunities(ctx context.Context, ref entity.Coordinate) ([]*entity.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.communities, nil
}

func (f *fakeData) FetchOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.orders, nil
}

func (f *fakeData) SubmitListing(ctx context.Context, plant *entity.Plant) (*entity.Plant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, plant.ID)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	saved := *plant
	saved.ID = "srv_" + plant.ID
	return &saved, nil
}

func (f *fakeData) SubmitCommunity(ctx context.Context, community *entity.Community) (*entity.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, community.ID)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	saved := *community
	saved.ID = "srv_" + community.ID
	return &saved, nil
}

func (f *fakeData) SubmitCommunityAction(ctx context.Context, communityID string, action CommunityAction) (*entity.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil, f.submitErr
}

func (f *fakeData) SubmitOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, order.ID)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	saved := *order
	saved.ID = "srv_" + order.ID
	return &saved, nil
}

func (f *fakeData) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listingFetches
}

type memoryCache struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemoryCache() *memoryCache {
	return &memoryCache{users: map[string]entity.User{}}
}

func (m *memoryCache) Load(ctx context.Context, userID string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryCache) Save(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

func (m *memoryCache) has(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[userID]
	return ok
}
