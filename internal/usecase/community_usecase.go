package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

type CommunityUseCase struct {
	communityRepo repository.CommunityRepository
	userUseCase   *UserUseCase
	radiusKm      float64
}

func NewCommunityUseCase(communityRepo repository.CommunityRepository, userUseCase *UserUseCase, radiusKm float64) *CommunityUseCase {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	return &CommunityUseCase{
		communityRepo: communityRepo,
		userUseCase:   userUseCase,
		radiusKm:      radiusKm,
	}
}

type CreateCommunityInput struct {
	Name     string
	Type     entity.CommunityType
	Purpose  string
	Bio      string
	Location *entity.Coordinate
}

func (uc *CommunityUseCase) NearbyCommunities(ctx context.Context, ref entity.Coordinate, radiusKm float64) ([]*entity.Community, error) {
	if err := geo.ValidateCoordinate(ref); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = uc.radiusKm
	}

	communities, err := uc.communityRepo.List(ctx, latitudeBand(ref, radiusKm))
	if err != nil {
		return nil, err
	}

	return nearest(ref, communities, radiusKm, "communities")
}

func (uc *CommunityUseCase) CreateCommunity(ctx context.Context, creatorID string, input CreateCommunityInput) (*entity.Community, error) {
	creator, err := uc.userUseCase.GetMe(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	location := input.Location
	if location == nil {
		location = creator.Location
	}
	if location == nil {
		return nil, errors.LocationRequired()
	}
	if err := geo.ValidateCoordinate(*location); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}

	kind := input.Type
	switch kind {
	case "":
		kind = entity.CommunityPermanent
	case entity.CommunityPermanent, entity.CommunityTemporary:
	default:
		return nil, errors.BadRequest(fmt.Sprintf("Unknown community type %q", kind), nil)
	}

	loc := *location
	if loc.Address == "" {
		loc.Address = entity.FormatAddress(loc.Latitude, loc.Longitude)
	}

	community := &entity.Community{
		CreatorID: creatorID,
		Name:      name,
		Type:      kind,
		Purpose:   input.Purpose,
		Bio:       input.Bio,
		Members:   []string{creatorID},
		Location:  loc,
		CreatedAt: time.Now(),
	}

	if err := uc.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}

	return community, nil
}

// JoinCommunity adds userID to the member set. Joining twice is a no-op.
func (uc *CommunityUseCase) JoinCommunity(ctx context.Context, communityID, userID string) (*entity.Community, error) {
	community, err := uc.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.HasMember(userID) {
		return community, nil
	}

	if err := uc.communityRepo.AddMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	logger.Debug("user %s joined community %s", userID, communityID)

	return community.WithMember(userID), nil
}

// LeaveCommunity removes userID from the member set if present.
func (uc *CommunityUseCase) LeaveCommunity(ctx context.Context, communityID, userID string) (*entity.Community, error) {
	community, err := uc.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !community.HasMember(userID) {
		return community, nil
	}

	if err := uc.communityRepo.RemoveMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	logger.Debug("user %s left community %s", userID, communityID)

	return community.WithoutMember(userID), nil
}

func (uc *CommunityUseCase) MyCommunities(ctx context.Context, userID string) ([]*entity.Community, error) {
	return uc.communityRepo.ListByMember(ctx, userID)
}
