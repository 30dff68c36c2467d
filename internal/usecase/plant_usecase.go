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
)

type PlantUseCase struct {
	plantRepo   repository.PlantRepository
	userUseCase *UserUseCase
	radiusKm    float64
}

func NewPlantUseCase(plantRepo repository.PlantRepository, userUseCase *UserUseCase, radiusKm float64) *PlantUseCase {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	return &PlantUseCase{
		plantRepo:   plantRepo,
		userUseCase: userUseCase,
		radiusKm:    radiusKm,
	}
}

type CreatePlantInput struct {
	Title            string
	Description      string
	Price            float64
	Currency         string
	Image            string
	GrowthConditions string
	PaymentMethods   []entity.PaymentMethod
	// Location defaults to the seller's last known location.
	Location *entity.Coordinate
}

// NearbyPlants returns listings within radiusKm of ref, nearest first. A
// radius of zero uses the configured default.
func (uc *PlantUseCase) NearbyPlants(ctx context.Context, ref entity.Coordinate, radiusKm float64) ([]*entity.Plant, error) {
	if err := geo.ValidateCoordinate(ref); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = uc.radiusKm
	}

	plants, err := uc.plantRepo.List(ctx, latitudeBand(ref, radiusKm))
	if err != nil {
		return nil, err
	}

	return nearest(ref, plants, radiusKm, "plants")
}

func (uc *PlantUseCase) GetPlant(ctx context.Context, id string) (*entity.Plant, error) {
	plant, err := uc.plantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.ListingNotFound(id)
		}
		return nil, err
	}
	return plant, nil
}

func (uc *PlantUseCase) CreatePlant(ctx context.Context, sellerID string, input CreatePlantInput) (*entity.Plant, error) {
	seller, err := uc.userUseCase.GetMe(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	location := input.Location
	if location == nil {
		location = seller.Location
	}
	if location == nil {
		return nil, errors.LocationRequired()
	}
	if err := geo.ValidateCoordinate(*location); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Title is required", nil)
	}
	if input.Price < 0 {
		return nil, errors.BadRequest("Price must not be negative", nil)
	}

	methods := input.PaymentMethods
	if len(methods) == 0 {
		methods = []entity.PaymentMethod{entity.PaymentCOD, entity.PaymentPickup}
	}
	for _, m := range methods {
		if !m.Valid() {
			return nil, errors.BadRequest(fmt.Sprintf("Unknown payment method %q", m), nil)
		}
	}

	loc := *location
	if loc.Address == "" {
		loc.Address = entity.FormatAddress(loc.Latitude, loc.Longitude)
	}

	plant := &entity.Plant{
		UserID:           sellerID,
		SellerName:       seller.Name,
		SellerPhotoURL:   seller.PhotoURL,
		Title:            title,
		Description:      input.Description,
		Price:            input.Price,
		Currency:         input.Currency,
		Image:            input.Image,
		GrowthConditions: input.GrowthConditions,
		PaymentMethods:   methods,
		Location:         loc,
		CreatedAt:        time.Now(),
	}

	if err := uc.plantRepo.Create(ctx, plant); err != nil {
		return nil, err
	}

	return plant, nil
}

func (uc *PlantUseCase) MyPlants(ctx context.Context, sellerID string) ([]*entity.Plant, error) {
	return uc.plantRepo.ListBySellerID(ctx, sellerID)
}
