package handler

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/service"
	"bloommarket/internal/usecase"
	"bloommarket/pkg/response"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type createOrderRequest struct {
	PlantID       string               `json:"plant_id" validate:"required"`
	PaymentMethod entity.PaymentMethod `json:"payment_method" validate:"required,oneof=COD Pickup"`
	Address       string               `json:"address" validate:"max=300"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.PlaceOrder(c.Request().Context(), service.OrderRequest{
		BuyerID:       c.Get("uid").(string),
		PlantID:       req.PlantID,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListOrders(c.Request().Context(), c.Get("uid").(string), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"orders": orders,
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderUseCase.GetOrder(c.Request().Context(), c.Get("uid").(string), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}
