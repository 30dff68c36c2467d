package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/errors"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemoryUsers(users ...*entity.User) *memoryUsers {
	m := &memoryUsers{users: map[string]*entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memoryUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdateLocation(_ context.Context, id string, location entity.Coordinate, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		u = &entity.User{ID: id}
		m.users[id] = u
	}
	u.Location = &location
	u.LocationUpdatedAt = at
	return nil
}

type staticProfiles map[string]*entity.User

func (p staticProfiles) GetProfile(_ context.Context, uid string) (*entity.User, error) {
	u, ok := p[uid]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

type memoryPlants struct {
	mu     sync.Mutex
	plants []*entity.Plant
	bands  []*repository.LatitudeBand
}

func (m *memoryPlants) Create(_ context.Context, plant *entity.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plant.ID == "" {
		plant.ID = fmt.Sprintf("p%d", len(m.plants)+1)
	}
	m.plants = append(m.plants, plant)
	return nil
}

func (m *memoryPlants) GetByID(_ context.Context, id string) (*entity.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("Plant", nil)
}

func (m *memoryPlants) List(_ context.Context, band *repository.LatitudeBand) ([]*entity.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bands = append(m.bands, band)
	out := []*entity.Plant{}
	for _, p := range m.plants {
		if band == nil || (p.Location.Latitude >= band.Min && p.Location.Latitude <= band.Max) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPlants) ListBySellerID(_ context.Context, sellerID string) ([]*entity.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Plant{}
	for _, p := range m.plants {
		if p.UserID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memoryCommunities struct {
	mu          sync.Mutex
	communities map[string]*entity.Community
	writes      int
}

func newMemoryCommunities(communities ...*entity.Community) *memoryCommunities {
	m := &memoryCommunities{communities: map[string]*entity.Community{}}
	for _, c := range communities {
		m.communities[c.ID] = c
	}
	return m
}

func (m *memoryCommunities) Create(_ context.Context, community *entity.Community) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if community.ID == "" {
		community.ID = fmt.Sprintf("c%d", len(m.communities)+1)
	}
	m.communities[community.ID] = community
	return nil
}

func (m *memoryCommunities) GetByID(_ context.Context, id string) (*entity.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[id]
	if !ok {
		return nil, errors.CommunityNotFound(id)
	}
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	return &cp, nil
}

func (m *memoryCommunities) List(_ context.Context, band *repository.LatitudeBand) ([]*entity.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Community{}
	for _, id := range m.sortedIDs() {
		c := m.communities[id]
		if band == nil || (c.Location.Latitude >= band.Min && c.Location.Latitude <= band.Max) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryCommunities) ListByMember(_ context.Context, userID string) ([]*entity.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Community{}
	for _, id := range m.sortedIDs() {
		if m.communities[id].HasMember(userID) {
			out = append(out, m.communities[id])
		}
	}
	return out, nil
}

func (m *memoryCommunities) AddMember(_ context.Context, communityID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[communityID]
	if !ok {
		return errors.CommunityNotFound(communityID)
	}
	m.writes++
	m.communities[communityID] = c.WithMember(userID)
	return nil
}

func (m *memoryCommunities) RemoveMember(_ context.Context, communityID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[communityID]
	if !ok {
		return errors.CommunityNotFound(communityID)
	}
	m.writes++
	m.communities[communityID] = c.WithoutMember(userID)
	return nil
}

func (m *memoryCommunities) sortedIDs() []string {
	ids := make([]string, 0, len(m.communities))
	for id := range m.communities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type memoryOrders struct {
	mu     sync.Mutex
	orders []*entity.Order
}

func (m *memoryOrders) Create(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == "" {
		order.ID = fmt.Sprintf("o%d", len(m.orders)+1)
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *memoryOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NotFound("Order", nil)
}

func (m *memoryOrders) ListByUserID(_ context.Context, userID string) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

type memoryFiles struct {
	uploaded map[string][]byte
	folders  []string
	deleted  []string
	failWith error
}

func (m *memoryFiles) UploadFile(_ context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	if m.failWith != nil {
		return "", m.failWith
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://storage.googleapis.com/bloom/%s/img%d", folder, len(m.uploaded)+1)
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[url] = buf.Bytes()
	m.folders = append(m.folders, folder)
	return url, nil
}

func (m *memoryFiles) DeleteFile(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}
