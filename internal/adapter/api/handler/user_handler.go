package handler

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/usecase"
	"bloommarket/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.userUseCase.GetMe(c.Request().Context(), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateLocation(c echo.Context) error {
	var req coordinateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateLocation(c.Request().Context(), c.Get("uid").(string), *req.toEntity())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
