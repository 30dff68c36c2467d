package handler

import (
	"bloommarket/internal/domain/entity"
	"bloommarket/internal/usecase"
)

var (
	plantHandler     *PlantHandler
	communityHandler *CommunityHandler
	orderHandler     *OrderHandler
	userHandler      *UserHandler
	uploadHandler    *UploadHandler
)

func Setup(
	plantUseCase *usecase.PlantUseCase,
	communityUseCase *usecase.CommunityUseCase,
	orderUseCase *usecase.OrderUseCase,
	userUseCase *usecase.UserUseCase,
	uploadUseCase *usecase.UploadUseCase,
) {
	plantHandler = NewPlantHandler(plantUseCase)
	communityHandler = NewCommunityHandler(communityUseCase)
	orderHandler = NewOrderHandler(orderUseCase)
	userHandler = NewUserHandler(userUseCase)
	uploadHandler = NewUploadHandler(uploadUseCase)
}

func GetPlantHandler() *PlantHandler {
	return plantHandler
}

func GetCommunityHandler() *CommunityHandler {
	return communityHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetUploadHandler() *UploadHandler {
	return uploadHandler
}

type coordinateRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address,omitempty" validate:"max=200"`
}

func (r *coordinateRequest) toEntity() *entity.Coordinate {
	if r == nil {
		return nil
	}
	return &entity.Coordinate{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Address:   r.Address,
	}
}

type nearbyRequest struct {
	UserLocation *coordinateRequest `json:"user_location" validate:"required"`
	RadiusKm     float64            `json:"radius_km" validate:"gte=0,lte=500"`
}
