package handler

import (
	"context"
	"fmt"
	"io"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/errors"
)

type stubUsers map[string]*entity.User

func (s stubUsers) Create(_ context.Context, user *entity.User) error {
	s[user.ID] = user
	return nil
}

func (s stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (s stubUsers) UpdateLocation(_ context.Context, id string, location entity.Coordinate, at time.Time) error {
	u, ok := s[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Location = &location
	u.LocationUpdatedAt = at
	return nil
}

func (s stubUsers) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return nil, errors.NotFound("User", nil)
}

type stubPlants []*entity.Plant

func (s *stubPlants) Create(_ context.Context, plant *entity.Plant) error {
	plant.ID = fmt.Sprintf("p%d", len(*s)+1)
	*s = append(*s, plant)
	return nil
}

func (s *stubPlants) GetByID(_ context.Context, id string) (*entity.Plant, error) {
	for _, p := range *s {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("Plant", nil)
}

func (s *stubPlants) List(_ context.Context, _ *repository.LatitudeBand) ([]*entity.Plant, error) {
	return *s, nil
}

func (s *stubPlants) ListBySellerID(_ context.Context, sellerID string) ([]*entity.Plant, error) {
	out := []*entity.Plant{}
	for _, p := range *s {
		if p.UserID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubOrders []*entity.Order

func (s *stubOrders) Create(_ context.Context, order *entity.Order) error {
	order.ID = fmt.Sprintf("o%d", len(*s)+1)
	*s = append(*s, order)
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	for _, o := range *s {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NotFound("Order", nil)
}

func (s *stubOrders) ListByUserID(_ context.Context, userID string) ([]*entity.Order, error) {
	out := []*entity.Order{}
	for _, o := range *s {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubCommunities map[string]*entity.Community

func (s stubCommunities) Create(_ context.Context, community *entity.Community) error {
	community.ID = fmt.Sprintf("c%d", len(s)+1)
	s[community.ID] = community
	return nil
}

func (s stubCommunities) GetByID(_ context.Context, id string) (*entity.Community, error) {
	if c, ok := s[id]; ok {
		return c, nil
	}
	return nil, errors.CommunityNotFound(id)
}

func (s stubCommunities) List(_ context.Context, _ *repository.LatitudeBand) ([]*entity.Community, error) {
	out := []*entity.Community{}
	for _, c := range s {
		out = append(out, c)
	}
	return out, nil
}

func (s stubCommunities) ListByMember(_ context.Context, userID string) ([]*entity.Community, error) {
	out := []*entity.Community{}
	for _, c := range s {
		if c.HasMember(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s stubCommunities) AddMember(_ context.Context, communityID, userID string) error {
	s[communityID] = s[communityID].WithMember(userID)
	return nil
}

func (s stubCommunities) RemoveMember(_ context.Context, communityID, userID string) error {
	s[communityID] = s[communityID].WithoutMember(userID)
	return nil
}

type stubFiles struct {
	contentType string
	body        string
}

func (s *stubFiles) UploadFile(_ context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.contentType = fileType
	s.body = string(b)
	return "https://storage.googleapis.com/bloom/" + folder + "/img.png", nil
}

func (s *stubFiles) DeleteFile(_ context.Context, url string) error {
	return nil
}

type stubConnection struct{ err error }

func (s stubConnection) TestConnection(context.Context) error { return s.err }
