package usecase

import (
	"context"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	"bloommarket/internal/domain/repository"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	profiles ProfileSource
}

func NewUserUseCase(userRepo repository.UserRepository, profiles ProfileSource) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		profiles: profiles,
	}
}

// GetMe returns the caller's user record, creating it from the identity
// provider's profile on first use.
func (uc *UserUseCase) GetMe(ctx context.Context, uid string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	profile, err := uc.profiles.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	profile.ID = uid

	if err := uc.userRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	logger.Info("Created user record for %s", uid)

	return profile, nil
}

func (uc *UserUseCase) UpdateLocation(ctx context.Context, uid string, location entity.Coordinate) (*entity.User, error) {
	if err := geo.ValidateCoordinate(location); err != nil {
		return nil, err
	}
	if location.Address == "" {
		location.Address = entity.FormatAddress(location.Latitude, location.Longitude)
	}

	user, err := uc.GetMe(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := uc.userRepo.UpdateLocation(ctx, uid, location, now); err != nil {
		return nil, err
	}

	user.Location = &location
	user.LocationUpdatedAt = now
	return user, nil
}
