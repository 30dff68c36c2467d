package handler

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/usecase"
	"bloommarket/pkg/response"
	"bloommarket/pkg/utils"
)

type PlantHandler struct {
	plantUseCase *usecase.PlantUseCase
}

func NewPlantHandler(plantUseCase *usecase.PlantUseCase) *PlantHandler {
	return &PlantHandler{
		plantUseCase: plantUseCase,
	}
}

type createPlantRequest struct {
	Title            string                 `json:"title" validate:"required,max=120"`
	Description      string                 `json:"description" validate:"max=2000"`
	Price            float64                `json:"price" validate:"gte=0"`
	Currency         string                 `json:"currency" validate:"max=8"`
	Image            string                 `json:"image" validate:"omitempty,url"`
	GrowthConditions string                 `json:"growthConditions" validate:"max=500"`
	PaymentMethods   []entity.PaymentMethod `json:"paymentMethods" validate:"omitempty,dive,oneof=COD Pickup"`
	Location         *coordinateRequest     `json:"location" validate:"omitempty"`
}

func (h *PlantHandler) NearbyPlants(c echo.Context) error {
	var req nearbyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	plants, err := h.plantUseCase.NearbyPlants(c.Request().Context(), *req.UserLocation.toEntity(), req.RadiusKm)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"plants": plants,
	})
}

func (h *PlantHandler) GetPlant(c echo.Context) error {
	plant, err := h.plantUseCase.GetPlant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, plant)
}

func (h *PlantHandler) CreatePlant(c echo.Context) error {
	var req createPlantRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sellerID := c.Get("uid").(string)

	plant, err := h.plantUseCase.CreatePlant(c.Request().Context(), sellerID, usecase.CreatePlantInput{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Currency:         req.Currency,
		Image:            req.Image,
		GrowthConditions: req.GrowthConditions,
		PaymentMethods:   req.PaymentMethods,
		Location:         req.Location.toEntity(),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, plant)
}

func (h *PlantHandler) ListMyPlants(c echo.Context) error {
	sellerID := c.Get("uid").(string)

	plants, err := h.plantUseCase.MyPlants(c.Request().Context(), sellerID)
	if err != nil {
		return response.Error(c, err)
	}

	pagination := utils.GetPaginationParams(c)
	return response.Paginated(c, utils.Window(plants, pagination), int64(len(plants)), pagination.Page, pagination.PageSize)
}
